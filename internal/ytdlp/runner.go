package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Scanner limits; --dump-json prints the whole info dict on one line
const (
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 32 * 1024 * 1024
)

// Result is the outcome of a process that ran to completion
type Result struct {
	ExitCode int
	Stderr   string
}

// LineFunc receives stdout one line at a time, without the trailing newline
type LineFunc func(line string)

// Runner starts a process and streams its output.
// A non-zero exit is reported through Result, not as an error; errors mean the
// process could not be started, its streams could not be read or ctx ended.
type Runner interface {
	Run(ctx context.Context, name string, args []string, onStdout LineFunc) (Result, error)
}

// ExecRunner runs processes with os/exec
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args []string, onStdout LineFunc) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	// children of yt-dlp (ffmpeg) may outlive it and keep the pipes open
	stop := context.AfterFunc(ctx, func() {
		_ = stdout.Close()
		_ = stderr.Close()
	})
	defer stop()

	var errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		return scanLines(stdout, onStdout)
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	// pipes must be drained before Wait closes them
	streamErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}

	res := Result{Stderr: errBuf.String()}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("failed to wait for %s: %w", name, waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	if streamErr != nil {
		return res, fmt.Errorf("failed to read %s output: %w", name, streamErr)
	}
	return res, nil
}

func scanLines(r io.Reader, onLine LineFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineBuffer)
	for scanner.Scan() {
		if onLine != nil {
			onLine(strings.TrimRight(scanner.Text(), "\r"))
		}
	}
	if err := scanner.Err(); err != nil {
		// keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
