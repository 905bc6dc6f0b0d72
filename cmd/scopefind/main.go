package main

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/scopefind/internal/config"
	"github.com/altinukshini/scopefind/internal/logger"
	"github.com/altinukshini/scopefind/internal/search"
	"github.com/altinukshini/scopefind/internal/tui"
	"github.com/altinukshini/scopefind/internal/watch"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := newRootCmd(runUI).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runUI(cfg config.Config) error {
	logger.SetVerbose(cfg.Verbose)
	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}
	logger.Info("starting", "version", version, "root", cfg.Root,
		"max_matches", cfg.MaxMatches, "watch", cfg.Watch)

	session := search.New(search.Options{
		SortKey:       cfg.SortKey(),
		BatchSize:     cfg.BatchSize,
		ProgressEvery: cfg.ProgressEvery,
		StallTimeout:  cfg.StallTimeout,
	})
	defer session.Close()

	var watcher *watch.Watcher
	if cfg.Watch {
		w, err := watch.New(cfg.Root, cfg.IgnoreDirs)
		if err != nil {
			// Searching still works; only cache freshness suffers.
			logger.Warn("file watcher unavailable", "root", cfg.Root, "err", err)
		} else {
			w.IgnoreFile(cfg.LogFile)
			watcher = w
			defer w.Close()
		}
	}

	app := tui.NewApp(cfg, session, watcher)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
