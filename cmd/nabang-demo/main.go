// Command nabang-demo is a sample Writer process: it opens the circular
// log and emits a scripted sequence of events, useful for exercising
// nabang-view and nabang-inspect against a live file.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/DavidKo3/nabang/internal/nabang/config"
	"github.com/DavidKo3/nabang/internal/nabang/writer"
)

var CLI struct {
	Run RunCmd `cmd:"" default:"1" help:"Emit a scripted sequence of events"`
}

// RunCmd opens a Writer against the configured backing file and emits a
// fixed demo script: a stamp, a scope, a handful of traces, and a value
// counter, then a failing valid assertion that blocks until answered, a
// final stamp, and an orderly close of the Writer.
type RunCmd struct {
	LogPath string `help:"Backing file path" type:"path"`
	Traces  int    `help:"Number of trace events to emit" default:"10"`
}

func (c *RunCmd) Run() error {
	cfg := config.FromEnv()
	if c.LogPath != "" {
		cfg.LogPath = c.LogPath
	}

	w, err := writer.New(cfg)
	if err != nil {
		return fmt.Errorf("nabang-demo: %w", err)
	}
	defer w.Close()

	if err := w.Stamp("nabang-demo.start"); err != nil {
		return err
	}

	scope, err := w.Scope("demo-run")
	if err != nil {
		return err
	}
	defer scope.Close()

	for i := 0; i < c.Traces; i++ {
		if err := w.Trace(writer.Info, "tick %d", i); err != nil {
			return err
		}
		if err := w.AddValueInt("ticks", 1); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}

	condition := false
	if err := w.Valid(context.Background(), &condition, "demo invariant holds"); err != nil {
		return fmt.Errorf("nabang-demo: valid assertion: %w", err)
	}

	return w.Stamp("nabang-demo.end")
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nabang-demo"),
		kong.Description("Emit a scripted sequence of nabang events"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
