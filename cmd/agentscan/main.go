// # cmd/agentscan/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"agentscan/internal/config"
	"agentscan/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./agentscan.toml", "Path to config file")
	watch      = flag.Bool("watch", false, "Keep running and rebuild on document changes")
	jsonOut    = flag.String("json", "", "Write the snapshot as JSON to this path")
	mdOut      = flag.String("markdown", "", "Write the stats report as markdown to this path")
	tsvOut     = flag.String("tsv", "", "Write one TSV row per rule to this path")
	noCache    = flag.Bool("no-cache", false, "Disable the snapshot cache")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("agentscan v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) || *configPath != "./agentscan.toml" {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if flag.NArg() > 0 {
		cfg.ProjectRoot = flag.Arg(0)
	}
	if *jsonOut != "" {
		cfg.Output.JSON = *jsonOut
	}
	if *mdOut != "" {
		cfg.Output.Markdown = *mdOut
	}
	if *tsvOut != "" {
		cfg.Output.TSV = *tsvOut
	}
	if *noCache {
		cfg.Cache.Enabled = false
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	start := time.Now()
	snapshot, err := app.BuildSnapshot()
	if err != nil {
		slog.Error("snapshot build failed", "error", err)
		os.Exit(1)
	}

	if err := app.GenerateOutputs(snapshot); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	app.PrintSummary(snapshot, time.Since(start))

	if !*watch {
		return
	}

	// Watch mode
	obs := observability.NewServer(cfg.Metrics.Addr)
	if err := obs.Start(); err != nil {
		slog.Error("failed to start observability server", "error", err)
	}

	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	// Block forever
	select {}
}
