// Command nabang-inspect opens a backing file read-only and reports the
// activity, packing count and page_id of every page, without going
// through the Reader façade's unit-cursor bookkeeping. Useful for
// diagnosing where the writer currently sits in the ring and how close a
// Reader lagging behind is to losing pages to wrap-around.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
	"github.com/DavidKo3/nabang/internal/nabang/config"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
)

var CLI struct {
	LogPath string `arg:"" optional:"" help:"Backing file path (defaults to NABANG_LOG_PATH or the built-in default)"`
	All     bool   `help:"Print every page, including ones never initialized"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("nabang-inspect"),
		kong.Description("Report per-page occupancy of a nabang backing file"),
		kong.UsageOnError(),
	)

	cfg := config.FromEnv()
	path := cfg.LogPath
	if CLI.LogPath != "" {
		path = CLI.LogPath
	}

	if err := run(path, CLI.All); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, all bool) error {
	fm, err := filemap.OpenRead(path)
	if err != nil {
		return fmt.Errorf("nabang-inspect: %w", err)
	}
	defer fm.Close()

	fmt.Printf("%-6s %-8s %-10s %-8s %-8s\n", "page", "code", "activity", "packing", "page_id")

	activePages := 0
	for i := 0; i < codec.PageCount; i++ {
		v, err := fm.ViewRead(i*codec.PageSize, codec.PageHeaderSize)
		if err != nil {
			return fmt.Errorf("nabang-inspect: page %d: %w", i, err)
		}
		h := codec.DecodePageHeader(v.Bytes)
		if h.Code != codec.PageCode {
			if all {
				fmt.Printf("%-6d %-8s %-10s %-8s %-8s\n", i, "-", "uninit", "-", "-")
			}
			continue
		}
		if h.Activity == codec.ActivityActive {
			activePages++
		}
		fmt.Printf("%-6d %-8c %-10s %-8d %-8d\n", i, h.Code, activityName(h.Activity), h.PackingCount, h.PageID)
	}

	if activePages > 1 {
		return fmt.Errorf("nabang-inspect: %d pages report activity='+' simultaneously, violating single-writer invariant", activePages)
	}
	return nil
}

func activityName(a byte) string {
	switch a {
	case codec.ActivityActive:
		return "active"
	case codec.ActivityClosed:
		return "closed"
	case codec.ActivityExited:
		return "exited"
	default:
		return fmt.Sprintf("?%c?", a)
	}
}
