// Command nabang-view is the Reader-side viewer: it polls the circular log
// and prints each event as it is delivered, and doubles as the operator
// side of the valid-assertion rendezvous via its answer subcommand.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/DavidKo3/nabang/internal/nabang/config"
	"github.com/DavidKo3/nabang/internal/nabang/reader"
	"github.com/DavidKo3/nabang/internal/nabang/valid"
	"github.com/DavidKo3/nabang/internal/nabang/wire"
)

var CLI struct {
	Tail   TailCmd   `cmd:"" default:"1" help:"Follow the circular log and print events"`
	Answer AnswerCmd `cmd:"" help:"Answer a pending valid assertion"`
}

// TailCmd polls the Reader façade and prints each event until the Writer
// exits orderly or the process is interrupted.
type TailCmd struct {
	LogPath string        `help:"Backing file path" type:"path"`
	Poll    time.Duration `help:"Poll interval while waiting for new events" default:"20ms"`
}

func (c *TailCmd) Run() error {
	cfg := config.FromEnv()
	if c.LogPath != "" {
		cfg.LogPath = c.LogPath
	}
	r := reader.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ev := range r.Events(ctx, c.Poll) {
		printEvent(ev)
	}
	return nil
}

func printEvent(ev reader.Event) {
	switch ev.FuncID {
	case wire.StampST, wire.ScopeBeginST, wire.ScopeEndST:
		fmt.Printf("%-13s %-24s t=%dns\n", ev.FuncID, ev.Name, ev.Int64)
	case wire.SetValueSS:
		fmt.Printf("%-13s %-24s = %q\n", ev.FuncID, ev.Name, ev.Value)
	case wire.TraceST, wire.ValidST, wire.SetValueST, wire.AddValueST:
		fmt.Printf("%-13s %-24s %d\n", ev.FuncID, ev.Name, ev.Int32)
	default:
		fmt.Printf("%-13s %-24s\n", ev.FuncID, ev.Name)
	}
}

// AnswerCmd writes a response file for a pending valid assertion, the
// external gesture the rendezvous leaves opaque.
type AnswerCmd struct {
	ValidDir string `help:"Valid-assertion response directory" type:"path"`
	Seq      int    `arg:"" help:"Assertion sequence number, from its printed <valid:N> line"`
	Command  string `arg:"" enum:"abort,continue,settrue" help:"abort, continue, or settrue"`
}

func (c *AnswerCmd) Run() error {
	cfg := config.FromEnv()
	dir := cfg.ValidDir
	if c.ValidDir != "" {
		dir = c.ValidDir
	}

	var cmd valid.Command
	switch c.Command {
	case "abort":
		cmd = valid.Abort
	case "continue":
		cmd = valid.Continue
	case "settrue":
		cmd = valid.SetTrue
	}
	return valid.Answer(dir, c.Seq, cmd)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nabang-view"),
		kong.Description("Follow and answer a nabang circular log"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
