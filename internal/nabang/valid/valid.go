// Package valid implements the "valid assertion" rendezvous: a point in
// the instrumented program that cannot decide its own outcome and hands
// the decision to whatever external process is watching the log, letting
// an operator or a test harness answer a blocked assertion by writing a
// 4-byte command.
//
// Go has no portable named-semaphore primitive in the standard library or
// in golang.org/x/sys/unix without cgo, so the handshake here is done with
// a stdout announcement plus a polled response file: a ticker loop guarded
// by a context.Context, not a blocking OS wait.
package valid

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Command is the operator's answer to a pending assertion.
type Command int32

const (
	// Abort means the operator wants the process to stop entirely.
	Abort Command = 0
	// Continue means skip this assertion and keep running without setting
	// the condition.
	Continue Command = 1
	// SetTrue means resolve the assertion's condition to true and continue.
	SetTrue Command = 2
)

func (c Command) String() string {
	switch c {
	case Abort:
		return "Abort"
	case Continue:
		return "Continue"
	case SetTrue:
		return "SetTrue"
	default:
		return fmt.Sprintf("Command(%d)", int32(c))
	}
}

// ErrAborted is returned by Await when the operator answers with Abort.
var ErrAborted = errors.New("valid: assertion aborted by operator")

// PollInterval is how often Await checks dir for a response file while
// waiting. Exported so callers with tight test deadlines can shrink it.
var PollInterval = 5 * time.Millisecond

// Await announces a named assertion on out in the "<valid:%d> %s" line
// format external tooling greps for, then blocks until either a response
// file appears in dir or ctx is cancelled. The response file is named
// valid-<seq>.resp and must contain a 4-byte little-endian Command; Await
// removes it once read.
//
// The returned bool reports whether the assertion's condition should be
// considered true (Command == SetTrue).
func Await(ctx context.Context, out io.Writer, seq int, message, dir string) (bool, error) {
	fmt.Fprintf(out, "<valid:%d> %s\n", seq, message)

	path := filepath.Join(dir, fmt.Sprintf("valid-%d.resp", seq))
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		cmd, ok, err := readCommand(path)
		if err != nil {
			return false, err
		}
		if ok {
			os.Remove(path)
			switch cmd {
			case Abort:
				return false, ErrAborted
			case Continue:
				return false, nil
			case SetTrue:
				return true, nil
			default:
				return false, fmt.Errorf("valid: unrecognized command %d for assertion %d", cmd, seq)
			}
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Answer writes a response file dir/valid-<seq>.resp carrying cmd, the
// counterpart an external operator or test harness calls to unblock a
// pending Await. Exported for tests and for the nabang-view CLI's
// answer subcommand.
func Answer(dir string, seq int, cmd Command) error {
	path := filepath.Join(dir, fmt.Sprintf("valid-%d.resp", seq))
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(cmd)))
	return os.WriteFile(path, buf, 0o600)
}

func readCommand(path string) (Command, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(data) < 4 {
		return 0, false, nil
	}
	return Command(int32(binary.LittleEndian.Uint32(data[:4]))), true, nil
}
