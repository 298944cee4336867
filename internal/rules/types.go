// # internal/rules/types.go
package rules

import (
	"time"
)

// Scope tags where a rules document was found.
type Scope string

const (
	ScopeGlobal       Scope = "global"        // user-home config
	ScopeProject      Scope = "project"       // project root, config dir, modular fragments
	ScopeProjectLocal Scope = "project_local" // local-override file at the project root
	ScopeSubdirectory Scope = "subdirectory"  // found by the bounded recursive scan
)

// Format classifies how a rule was written down.
type Format string

const (
	FormatCommand     Format = "command"
	FormatEmphatic    Format = "emphatic"
	FormatBulletPoint Format = "bullet_point"
	FormatParagraph   Format = "paragraph"
	// FormatHeadingSection is reserved; headings shape the hierarchy but are
	// not emitted as rules by the body parser.
	FormatHeadingSection Format = "heading_section"
)

// Emphasis classifies the directive strength of a rule.
type Emphasis string

const (
	EmphasisImportant Emphasis = "important"
	EmphasisNegative  Emphasis = "negative"
	EmphasisNormal    Emphasis = "normal"
)

// DiscoveredFile is one candidate rules document located on disk.
// Path is canonical (symlinks resolved); it is the dedup key for a pass.
type DiscoveredFile struct {
	Path         string    `json:"path"`
	Scope        Scope     `json:"scope"`
	RelativePath string    `json:"relative_path"`
	LastModified time.Time `json:"last_modified"`
	SizeBytes    int64     `json:"size_bytes"`
}

// ParsedRule is one atomic, individually addressable rule.
type ParsedRule struct {
	ID               string   `json:"id"` // 16-hex-char content-addressed digest
	Text             string   `json:"text"`
	Section          string   `json:"section,omitempty"`
	SectionHierarchy []string `json:"section_hierarchy,omitempty"` // outer -> inner
	SourceFile       string   `json:"source_file"`
	SourceScope      Scope    `json:"source_scope"`
	LineStart        int      `json:"line_start"` // inclusive, 1-based
	LineEnd          int      `json:"line_end"`   // inclusive, 1-based
	Format           Format   `json:"format"`
	Emphasis         Emphasis `json:"emphasis"`
	Imports          []string `json:"imports,omitempty"` // inline @path tokens, document order
}

// ImportReference is a file-level @path occurrence.
type ImportReference struct {
	Path         string `json:"path"`                    // as written
	ResolvedPath string `json:"resolved_path,omitempty"` // empty when resolution was not attempted
	Line         int    `json:"line"`                    // 1-based
}

// RulesFile is one parsed rules document.
type RulesFile struct {
	Path         string            `json:"path"`
	Scope        Scope             `json:"scope"`
	RelativePath string            `json:"relative_path"`
	Content      string            `json:"content"` // normalized to \n line endings
	Rules        []ParsedRule      `json:"rules"`
	Imports      []ImportReference `json:"imports,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	SizeBytes    int64             `json:"size_bytes"`
}

// RulesSnapshot is the complete, immutable result of one assembly pass.
type RulesSnapshot struct {
	ID          string       `json:"id"`
	ProjectRoot string       `json:"project_root"`
	CreatedAt   time.Time    `json:"created_at"`
	Files       []RulesFile  `json:"files"`     // discovery order
	AllRules    []ParsedRule `json:"all_rules"` // file order, then in-file parse order
	Stats       RulesStats   `json:"stats"`
}

// RulesStats aggregates counts over one snapshot.
type RulesStats struct {
	TotalFiles      int            `json:"total_files"`
	TotalRules      int            `json:"total_rules"`
	TotalLines      int            `json:"total_lines"`
	TotalBytes      int64          `json:"total_bytes"`
	TotalImports    int            `json:"total_imports"`
	ByScope         map[Scope]int  `json:"by_scope"`
	ByFormat        map[Format]int `json:"by_format"`
	HasGlobalRules  bool           `json:"has_global_rules"`
	HasLocalRules   bool           `json:"has_local_rules"`
	HasModularRules bool           `json:"has_modular_rules"`
}
