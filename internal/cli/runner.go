package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Makepad-fr/itemdash/internal/ui"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage error.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Streams are the process's standard streams. Tests substitute buffers.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns os.Stdin, os.Stdout and os.Stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// exitError carries an exit code. Silent errors were already shown to the
// user as a notice.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// reported marks err as already shown by a flow notice.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitError, err: err, silent: true}
}

// isUsage catches the one usage error cobra returns as a plain error.
// Flag and argument errors already arrive as exitError.
func isUsage(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command ")
}

// Run dispatches args and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string) int {
	return RunWith(StdStreams(), args)
}

// RunWith is Run on explicit streams.
func RunWith(s Streams, args []string) int {
	root, a := newRoot(s)
	defer a.close()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			ui.Fail(s.Err, ee.err.Error())
		}
		if ee.code == ExitUsage {
			ui.Hint(s.Err, "Run 'itemdash --help' for usage.")
		}
		return ee.code
	}
	ui.Fail(s.Err, err.Error())
	if isUsage(err) {
		ui.Hint(s.Err, "Run 'itemdash --help' for usage.")
		return ExitUsage
	}
	return ExitError
}
