package valid

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func init() {
	PollInterval = time.Millisecond
}

func TestAwaitSetTrue(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	done := make(chan struct{})
	var gotTrue bool
	var gotErr error
	go func() {
		gotTrue, gotErr = Await(context.Background(), &out, 1, "x > 0", dir)
		close(done)
	}()

	if err := Answer(dir, 1, SetTrue); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	<-done
	if gotErr != nil {
		t.Fatalf("Await error: %v", gotErr)
	}
	if !gotTrue {
		t.Fatalf("Await returned false, want true")
	}
	if got := out.String(); got != "<valid:1> x > 0\n" {
		t.Fatalf("announcement = %q, want %q", got, "<valid:1> x > 0\n")
	}
}

func TestAwaitAbort(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	done := make(chan struct{})
	var gotErr error
	go func() {
		_, gotErr = Await(context.Background(), &out, 2, "y != nil", dir)
		close(done)
	}()

	if err := Answer(dir, 2, Abort); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	<-done
	if gotErr != ErrAborted {
		t.Fatalf("Await error = %v, want ErrAborted", gotErr)
	}
}

func TestAwaitContextCancel(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, &out, 3, "never answered", dir)
	if err != context.DeadlineExceeded {
		t.Fatalf("Await error = %v, want DeadlineExceeded", err)
	}
}
