// # internal/rules/discover.go
package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RulesFileName is the top-level document name looked for at the project
	// root and in every scanned subdirectory.
	RulesFileName = "AGENTS.md"
	// LocalRulesFileName is the project-root local-override variant.
	LocalRulesFileName = "AGENTS.local.md"
	// ConfigDirName is the dedicated config subdirectory.
	ConfigDirName = ".agents"
	// ModularRulesDirName holds modular fragments, under ConfigDirName.
	ModularRulesDirName = "rules"

	// maxScanDepth bounds the recursive subdirectory scan; depth is counted
	// from 1 for immediate children of the project root.
	maxScanDepth = 3
)

func isModularExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Discover locates every candidate rules document for a project, in fixed
// precedence order: global, project root, local override, config-dir
// alternate, modular fragments, then the bounded recursive scan. A candidate
// that is missing, not a regular file, or unreadable is silently skipped;
// a non-existent root yields an empty result.
func Discover(projectRoot string) []DiscoveredFile {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil
	}

	d := &discoverer{root: root, seen: make(map[string]bool)}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		d.add(filepath.Join(home, ConfigDirName, RulesFileName), ScopeGlobal)
	}
	d.add(filepath.Join(root, RulesFileName), ScopeProject)
	d.add(filepath.Join(root, LocalRulesFileName), ScopeProjectLocal)

	configDir := filepath.Join(root, ConfigDirName)
	d.add(filepath.Join(configDir, RulesFileName), ScopeProject)
	d.addModular(filepath.Join(configDir, ModularRulesDirName))

	d.scanSubdirs(root, 0)

	return d.files
}

type discoverer struct {
	root  string
	seen  map[string]bool // canonical path -> recorded
	files []DiscoveredFile
}

// add resolves a candidate to its canonical path and records it once. The
// canonical path is the sole dedup key: two locations pointing at the same
// file through symlinks collapse to a single entry.
func (d *discoverer) add(path string, scope Scope) {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if d.seen[canonical] {
		slog.Debug("skipping duplicate rules document", "path", path, "canonical", canonical)
		return
	}
	d.seen[canonical] = true

	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		rel = path
	}

	d.files = append(d.files, DiscoveredFile{
		Path:         canonical,
		Scope:        scope,
		RelativePath: rel,
		LastModified: info.ModTime(),
		SizeBytes:    info.Size(),
	})
}

// addModular records every recognized fragment in the modular rules
// directory, in lexicographic order.
func (d *discoverer) addModular(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isModularExtension(entry.Name()) {
			continue
		}
		d.add(filepath.Join(dir, entry.Name()), ScopeProject)
	}
}

// scanSubdirs looks for the top-level document name in nested directories up
// to maxScanDepth. The ignore set, dot-prefixed directories (other than the
// config dir, which steps 4-5 already handled), and per-entry read failures
// are all absorbed without aborting the scan.
func (d *discoverer) scanSubdirs(dir string, depth int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ignoredDirNames[name] || strings.HasPrefix(name, ".") {
			continue
		}
		child := filepath.Join(dir, name)
		childDepth := depth + 1
		if childDepth > maxScanDepth {
			continue
		}
		d.add(filepath.Join(child, RulesFileName), ScopeSubdirectory)
		d.scanSubdirs(child, childDepth)
	}
}
