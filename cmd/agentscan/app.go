// # cmd/agentscan/app.go
package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"agentscan/internal/cache"
	"agentscan/internal/config"
	"agentscan/internal/output"
	"agentscan/internal/rules"
	"agentscan/internal/shared/observability"
	"agentscan/internal/shared/util"
	"agentscan/internal/watcher"
)

type App struct {
	Config *config.Config
	Store  *cache.Store // nil when caching is disabled

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	watcher        *watcher.Watcher
	rebuildLimiter *util.Limiter

	mu   sync.Mutex
	last *rules.RulesSnapshot
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	for _, p := range cfg.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		a.excludeDirs = append(a.excludeDirs, g)
	}
	for _, p := range cfg.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		a.excludeFiles = append(a.excludeFiles, g)
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		a.Store = store
	}

	a.rebuildLimiter = util.NewLimiter(cfg.Watch.RebuildsPerSec, cfg.Watch.RebuildBurst)

	return a, nil
}

func (a *App) Close() error {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// BuildSnapshot discovers, filters, and assembles the current snapshot,
// consulting the cache first when one is configured.
func (a *App) BuildSnapshot() (*rules.RulesSnapshot, error) {
	start := time.Now()
	files := a.filterExcluded(rules.Discover(a.Config.ProjectRoot))
	observability.DiscoveryDuration.Observe(time.Since(start).Seconds())

	sourceKey := cache.SourceKey(files)

	if a.Store != nil {
		root, err := filepath.Abs(a.Config.ProjectRoot)
		if err == nil {
			if snapshot, ok, err := a.Store.Lookup(root, sourceKey); err != nil {
				slog.Warn("snapshot cache lookup failed", "error", err)
			} else if ok {
				observability.CacheHitsTotal.Inc()
				slog.Debug("snapshot cache hit", "root", root, "files", len(snapshot.Files))
				a.setLast(snapshot)
				return snapshot, nil
			}
		}
		observability.CacheMissesTotal.Inc()
	}

	snapshot, err := rules.AssembleSnapshot(a.Config.ProjectRoot, files)
	if err != nil {
		return nil, err
	}

	if a.Store != nil {
		if err := a.Store.Save(sourceKey, snapshot); err != nil {
			slog.Warn("failed to persist snapshot", "error", err)
		}
	}

	a.setLast(snapshot)
	return snapshot, nil
}

func (a *App) setLast(snapshot *rules.RulesSnapshot) {
	a.mu.Lock()
	a.last = snapshot
	a.mu.Unlock()
}

// filterExcluded applies configured exclude globs on top of discovery's
// built-in traversal policy.
func (a *App) filterExcluded(files []rules.DiscoveredFile) []rules.DiscoveredFile {
	if len(a.excludeDirs) == 0 && len(a.excludeFiles) == 0 {
		return files
	}

	kept := files[:0:0]
fileLoop:
	for _, f := range files {
		base := filepath.Base(f.Path)
		for _, g := range a.excludeFiles {
			if g.Match(base) {
				continue fileLoop
			}
		}
		for _, segment := range strings.Split(filepath.ToSlash(filepath.Dir(f.RelativePath)), "/") {
			for _, g := range a.excludeDirs {
				if g.Match(segment) {
					continue fileLoop
				}
			}
		}
		kept = append(kept, f)
	}
	return kept
}

// GenerateOutputs writes every configured render of the snapshot.
func (a *App) GenerateOutputs(snapshot *rules.RulesSnapshot) error {
	cfg := a.Config.Output

	if cfg.JSON != "" {
		content, err := output.GenerateJSON(snapshot)
		if err != nil {
			return fmt.Errorf("generate json: %w", err)
		}
		if err := util.WriteStringWithDirs(cfg.JSON, content, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", cfg.JSON, err)
		}
	}

	if cfg.Markdown != "" {
		content, err := output.GenerateMarkdown(snapshot)
		if err != nil {
			return fmt.Errorf("generate markdown: %w", err)
		}
		if err := util.WriteStringWithDirs(cfg.Markdown, content, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", cfg.Markdown, err)
		}
	}

	if cfg.TSV != "" {
		content, err := output.GenerateTSV(snapshot)
		if err != nil {
			return fmt.Errorf("generate tsv: %w", err)
		}
		if err := util.WriteStringWithDirs(cfg.TSV, content, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", cfg.TSV, err)
		}
	}

	return nil
}

func (a *App) PrintSummary(snapshot *rules.RulesSnapshot, duration time.Duration) {
	stats := snapshot.Stats

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d files, %d rules in %v\n", stats.TotalFiles, stats.TotalRules, duration)

	for _, scope := range []rules.Scope{rules.ScopeGlobal, rules.ScopeProject, rules.ScopeProjectLocal, rules.ScopeSubdirectory} {
		if n := stats.ByScope[scope]; n > 0 {
			fmt.Printf("   %-14s %d\n", scope, n)
		}
	}
	if stats.TotalImports > 0 {
		fmt.Printf("   imports        %d\n", stats.TotalImports)
	}
	if stats.HasModularRules {
		fmt.Println("   modular rules present")
	}
}

// StartWatcher begins watch mode: rules-document changes rebuild the snapshot
// and regenerate outputs, throttled by the rebuild limiter.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.onDocumentsChanged,
	)
	if err != nil {
		return err
	}
	a.watcher = w

	return w.Watch([]string{a.Config.ProjectRoot})
}

func (a *App) onDocumentsChanged(paths []string) {
	if !a.rebuildLimiter.Allow() {
		observability.RebuildsThrottledTotal.Inc()
		slog.Debug("rebuild throttled", "changed", len(paths))
		return
	}
	observability.RebuildsTotal.Inc()

	start := time.Now()
	snapshot, err := a.BuildSnapshot()
	if err != nil {
		slog.Error("snapshot rebuild failed", "error", err)
		return
	}
	if err := a.GenerateOutputs(snapshot); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	a.PrintSummary(snapshot, time.Since(start))
}
