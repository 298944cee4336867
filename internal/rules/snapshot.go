// # internal/rules/snapshot.go
package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"agentscan/internal/shared/observability"
	"agentscan/internal/shared/util"
)

// BuildSnapshot discovers every rules document under projectRoot and
// assembles them into one snapshot. It is a pure function of on-disk state:
// no caching, no mutation of source files.
func BuildSnapshot(projectRoot string) (*RulesSnapshot, error) {
	start := time.Now()
	files := Discover(projectRoot)
	observability.DiscoveryDuration.Observe(time.Since(start).Seconds())

	return AssembleSnapshot(projectRoot, files)
}

// AssembleSnapshot parses an already-discovered file list. Documents are read
// and parsed on a bounded worker pool; results are reassembled into discovery
// order, and rules within a file keep document order, so the output is
// deterministic regardless of scheduling. A file that disappears or becomes
// unreadable between discovery and read is omitted, mirroring discovery's
// permissive policy.
func AssembleSnapshot(projectRoot string, files []DiscoveredFile) (*RulesSnapshot, error) {
	start := time.Now()

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	results := make([]*RulesFile, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, df := range files {
		i, df := i, df
		g.Go(func() error {
			results[i] = processFile(df)
			return nil
		})
	}
	// Workers never return errors; per-file failures are absorbed.
	_ = g.Wait()

	snapshot := &RulesSnapshot{
		ID:          uuid.NewString(),
		ProjectRoot: root,
		CreatedAt:   time.Now().UTC(),
	}
	for _, rf := range results {
		if rf == nil {
			continue
		}
		snapshot.Files = append(snapshot.Files, *rf)
		snapshot.AllRules = append(snapshot.AllRules, rf.Rules...)
	}
	snapshot.Stats = computeStats(snapshot.Files)

	observability.SnapshotDuration.Observe(time.Since(start).Seconds())
	observability.SnapshotFiles.Set(float64(snapshot.Stats.TotalFiles))
	observability.SnapshotRules.Set(float64(snapshot.Stats.TotalRules))

	return snapshot, nil
}

func processFile(df DiscoveredFile) *RulesFile {
	raw, err := os.ReadFile(df.Path)
	if err != nil {
		slog.Warn("skipping unreadable rules document", "path", df.Path, "error", err)
		return nil
	}
	content := normalizeLineEndings(string(raw))

	start := time.Now()
	parsed := Parse(content, df.Path, df.Scope)
	imports := ExtractFileImports(content, df.Path)
	observability.ParseDuration.WithLabelValues(string(df.Scope)).Observe(time.Since(start).Seconds())

	return &RulesFile{
		Path:         df.Path,
		Scope:        df.Scope,
		RelativePath: df.RelativePath,
		Content:      content,
		Rules:        parsed,
		Imports:      imports,
		LastModified: df.LastModified,
		SizeBytes:    df.SizeBytes,
	}
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func computeStats(files []RulesFile) RulesStats {
	stats := RulesStats{
		ByScope:  make(map[Scope]int),
		ByFormat: make(map[Format]int),
	}

	modularPrefix := ConfigDirName + "/" + ModularRulesDirName

	for _, rf := range files {
		stats.TotalFiles++
		stats.TotalBytes += rf.SizeBytes
		if rf.Content != "" {
			stats.TotalLines += strings.Count(rf.Content, "\n") + 1
		}
		stats.TotalImports += len(rf.Imports)

		for _, r := range rf.Rules {
			stats.TotalRules++
			stats.ByScope[r.SourceScope]++
			stats.ByFormat[r.Format]++
		}

		switch rf.Scope {
		case ScopeGlobal:
			stats.HasGlobalRules = true
		case ScopeProjectLocal:
			stats.HasLocalRules = true
		}
		if util.HasPathPrefix(rf.RelativePath, modularPrefix) {
			stats.HasModularRules = true
		}
	}

	return stats
}
