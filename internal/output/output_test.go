// # internal/output/output_test.go
package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"agentscan/internal/rules"
)

func testSnapshot() *rules.RulesSnapshot {
	snap := &rules.RulesSnapshot{
		ID:          "snap-1",
		ProjectRoot: "/project",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Files: []rules.RulesFile{
			{
				Path:         "/project/AGENTS.md",
				Scope:        rules.ScopeProject,
				RelativePath: "AGENTS.md",
				Rules: []rules.ParsedRule{
					{ID: "aaaaaaaaaaaaaaaa", Text: "Use tabs", Section: "Style", SourceFile: "/project/AGENTS.md", SourceScope: rules.ScopeProject, LineStart: 3, LineEnd: 3, Format: rules.FormatBulletPoint, Emphasis: rules.EmphasisNormal},
					{ID: "bbbbbbbbbbbbbbbb", Text: "Never force-push", SourceFile: "/project/AGENTS.md", SourceScope: rules.ScopeProject, LineStart: 5, LineEnd: 5, Format: rules.FormatEmphatic, Emphasis: rules.EmphasisImportant},
				},
				Imports: []rules.ImportReference{{Path: "docs/a.md", Line: 7}},
			},
		},
	}
	for _, f := range snap.Files {
		snap.AllRules = append(snap.AllRules, f.Rules...)
	}
	snap.Stats = rules.RulesStats{
		TotalFiles:   1,
		TotalRules:   2,
		TotalLines:   8,
		TotalBytes:   120,
		TotalImports: 1,
		ByScope:      map[rules.Scope]int{rules.ScopeProject: 2},
		ByFormat:     map[rules.Format]int{rules.FormatBulletPoint: 1, rules.FormatEmphatic: 1},
	}
	return snap
}

func TestGenerateTSV(t *testing.T) {
	out, err := GenerateTSV(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID\tScope\tFormat") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "aaaaaaaaaaaaaaaa\tproject\tbullet_point") {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "emphatic\timportant") {
		t.Errorf("Unexpected second row: %s", lines[2])
	}
}

func TestGenerateMarkdown(t *testing.T) {
	out, err := GenerateMarkdown(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"# Rules Report",
		"| Rules | 2 |",
		"| project | 2 |",
		"| bullet_point | 1 |",
		"- Modular rules: no",
		"| AGENTS.md | project | 2 | 1 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown report missing %q", want)
		}
	}
}

func TestGenerateMarkdownStable(t *testing.T) {
	snap := testSnapshot()
	a, _ := GenerateMarkdown(snap)
	b, _ := GenerateMarkdown(snap)
	if a != b {
		t.Error("Markdown rendering is not stable for a fixed snapshot")
	}
}

func TestGenerateJSONRoundTrip(t *testing.T) {
	snap := testSnapshot()
	out, err := GenerateJSON(snap)
	if err != nil {
		t.Fatal(err)
	}

	var decoded rules.RulesSnapshot
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ID != snap.ID || len(decoded.AllRules) != 2 {
		t.Errorf("Round trip lost data: %+v", decoded)
	}
	if decoded.AllRules[1].ID != "bbbbbbbbbbbbbbbb" {
		t.Errorf("Unexpected rule id: %s", decoded.AllRules[1].ID)
	}
}
