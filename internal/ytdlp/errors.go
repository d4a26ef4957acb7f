package ytdlp

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds
var (
	ErrToolUnavailable     = errors.New("yt-dlp not available")
	ErrMetadataFetchFailed = errors.New("failed to get metadata")
	ErrFormatsFailed       = errors.New("failed to get formats")
	ErrDownloadFailed      = errors.New("download failed")
)

// Operation names used in errors and logs
const (
	OpInitialize = "initialize"
	OpVersion    = "version"
	OpMetadata   = "metadata"
	OpFormats    = "formats"
	OpDownload   = "download"
)

// Error describes a failed yt-dlp operation.
// Detail holds the tool's raw stderr when the process exited unsuccessfully.
type Error struct {
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("ytdlp ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if d := strings.TrimSpace(e.Detail); d != "" {
		b.WriteString(": ")
		b.WriteString(d)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Reason returns the text to record as a failure reason for err: the tool's
// detail trimmed of surrounding whitespace when available, the error text otherwise.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if d := strings.TrimSpace(e.Detail); d != "" {
			return d
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Kind.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func unavailable(op string) error {
	return &Error{Op: op, Kind: ErrToolUnavailable}
}

func failed(op string, kind error, res Result, err error) error {
	if err != nil {
		return &Error{Op: op, Kind: kind, Detail: err.Error(), Err: err}
	}
	detail := res.Stderr
	if strings.TrimSpace(detail) == "" {
		detail = fmt.Sprintf("yt-dlp exited with status %d", res.ExitCode)
	}
	return &Error{Op: op, Kind: kind, Detail: detail}
}
