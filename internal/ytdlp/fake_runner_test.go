package ytdlp

import (
	"context"
	"strings"
	"sync"
)

type fakeCall struct {
	name string
	args []string
}

// fakeRunner records invocations and answers them with handle
type fakeRunner struct {
	mu     sync.Mutex
	calls  []fakeCall
	handle func(name string, args []string, onStdout LineFunc) (Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, onStdout LineFunc) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{name: name, args: append([]string(nil), args...)})
	handle := f.handle
	f.mu.Unlock()

	if handle == nil {
		return Result{}, nil
	}
	return handle(name, args, onStdout)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// emit returns a handler writing stdout lines and finishing with res
func emit(stdout string, res Result) func(string, []string, LineFunc) (Result, error) {
	return func(_ string, _ []string, onStdout LineFunc) (Result, error) {
		if stdout != "" {
			for _, line := range strings.Split(strings.TrimSuffix(stdout, "\n"), "\n") {
				if onStdout != nil {
					onStdout(line)
				}
			}
		}
		return res, nil
	}
}

func newTestTool(r Runner) *Tool {
	return New(WithRunner(r), WithPath("/usr/local/bin/yt-dlp"))
}
