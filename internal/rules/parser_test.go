// # internal/rules/parser_test.go
package rules

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseHeadingHierarchy(t *testing.T) {
	text := "# A\n## B\n\nT1\n\n## C\n\nT2"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}

	if !reflect.DeepEqual(rules[0].SectionHierarchy, []string{"A", "B"}) {
		t.Errorf("Expected [A B], got %v", rules[0].SectionHierarchy)
	}
	if rules[0].Section != "B" {
		t.Errorf("Expected section B, got %s", rules[0].Section)
	}

	// The sibling heading C at level 2 replaces B; it must not stack.
	if !reflect.DeepEqual(rules[1].SectionHierarchy, []string{"A", "C"}) {
		t.Errorf("Expected [A C], got %v", rules[1].SectionHierarchy)
	}
}

func TestParseHierarchySnapshotIsStable(t *testing.T) {
	text := "# A\n\nT1\n\n# B\n\nT2"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	// The later heading must not have leaked into the earlier rule.
	if !reflect.DeepEqual(rules[0].SectionHierarchy, []string{"A"}) {
		t.Errorf("Expected [A], got %v", rules[0].SectionHierarchy)
	}
}

func TestParseFenceExclusion(t *testing.T) {
	text := "Before\n\n```\n- not a rule\nIMPORTANT: not a rule either\n```\n\nAfter"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	for _, r := range rules {
		if strings.Contains(r.Text, "not a rule") {
			t.Errorf("Fenced content leaked into rule text: %q", r.Text)
		}
	}
}

func TestParseFenceLengthMatching(t *testing.T) {
	for _, marker := range []string{"`", "~"} {
		open := strings.Repeat(marker, 4)
		short := strings.Repeat(marker, 3)
		text := open + "\nhidden content\n" + short + "\nstill hidden\n" + open + "\nvisible"

		rules := Parse(text, "test.md", ScopeProject)

		if len(rules) != 1 {
			t.Fatalf("marker %q: expected 1 rule, got %d", marker, len(rules))
		}
		if rules[0].Text != "visible" {
			t.Errorf("marker %q: expected text %q, got %q", marker, "visible", rules[0].Text)
		}
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	text := "First\n\n```\neverything after the fence\n- is consumed"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	if rules[0].Text != "First" {
		t.Errorf("Expected %q, got %q", "First", rules[0].Text)
	}
}

func TestParseNestedBulletGrouping(t *testing.T) {
	text := "- P\n  - C1\n  - C2\n- Q"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}

	first := rules[0]
	for _, want := range []string{"P", "C1", "C2"} {
		if !strings.Contains(first.Text, want) {
			t.Errorf("Expected rule text to contain %q, got %q", want, first.Text)
		}
	}
	if first.LineStart != 1 || first.LineEnd != 3 {
		t.Errorf("Expected lines 1-3, got %d-%d", first.LineStart, first.LineEnd)
	}
	if first.Format != FormatBulletPoint {
		t.Errorf("Expected bullet_point, got %s", first.Format)
	}

	if rules[1].Text != "Q" || rules[1].LineStart != 4 {
		t.Errorf("Unexpected second rule: %+v", rules[1])
	}
}

func TestParseParagraphGrouping(t *testing.T) {
	text := "line one\nline two\n\nline three"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].Text != "line one\nline two" {
		t.Errorf("Unexpected joined text: %q", rules[0].Text)
	}
	if rules[0].LineStart != 1 || rules[0].LineEnd != 2 {
		t.Errorf("Expected lines 1-2, got %d-%d", rules[0].LineStart, rules[0].LineEnd)
	}
	if rules[0].Format != FormatParagraph {
		t.Errorf("Expected paragraph, got %s", rules[0].Format)
	}
}

func TestParseSkipsStructuralNoise(t *testing.T) {
	text := "Above\n\n---\n\n***\n\n<!-- a comment -->\n\nBelow"
	rules := Parse(text, "test.md", ScopeProject)

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].Text != "Above" || rules[1].Text != "Below" {
		t.Errorf("Unexpected rules: %q, %q", rules[0].Text, rules[1].Text)
	}
}

func TestFormatClassification(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected Format
	}{
		{name: "Command", text: "`make test` before every commit", expected: FormatCommand},
		{name: "Emphatic", text: "IMPORTANT: review the diff", expected: FormatEmphatic},
		{name: "EmphaticNever", text: "Never commit directly to main", expected: FormatEmphatic},
		{name: "Paragraph", text: "Use tabs for indentation", expected: FormatParagraph},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := Parse(tc.text, "test.md", ScopeProject)
			if len(rules) != 1 {
				t.Fatalf("Expected 1 rule, got %d", len(rules))
			}
			if rules[0].Format != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, rules[0].Format)
			}
		})
	}

	bullets := Parse("- Use tabs for indentation", "test.md", ScopeProject)
	if len(bullets) != 1 || bullets[0].Format != FormatBulletPoint {
		t.Errorf("Expected bullet_point, got %+v", bullets)
	}
}

func TestEmphasisClassification(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected Emphasis
	}{
		{name: "Important", text: "You must run the linter", expected: EmphasisImportant},
		{name: "Negation", text: "do not edit generated files", expected: EmphasisImportant},
		{name: "Negative", text: "Please avoid global state", expected: EmphasisNegative},
		{name: "Normal", text: "Keep functions small", expected: EmphasisNormal},
		// The directive set wins even when a discouragement keyword is present too.
		{name: "Precedence", text: "Never use panics, and avoid global state", expected: EmphasisImportant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := Parse(tc.text, "test.md", ScopeProject)
			if len(rules) != 1 {
				t.Fatalf("Expected 1 rule, got %d", len(rules))
			}
			if rules[0].Emphasis != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, rules[0].Emphasis)
			}
		})
	}
}

func TestParseInlineImports(t *testing.T) {
	rules := Parse("- See @docs/style.md and @docs/testing.md", "test.md", ScopeProject)
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	if !reflect.DeepEqual(rules[0].Imports, []string{"docs/style.md", "docs/testing.md"}) {
		t.Errorf("Unexpected imports: %v", rules[0].Imports)
	}
}

func TestParseInlineImportSpanExclusion(t *testing.T) {
	rules := Parse("Use `@types/node` for types", "test.md", ScopeProject)
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].Imports) != 0 {
		t.Errorf("Expected no imports, got %v", rules[0].Imports)
	}
}

func TestParseDeterminism(t *testing.T) {
	text := "# A\n\n- NEVER do X @ref/a.md\n\nSome paragraph\n\n```\ncode\n```\n"
	a := Parse(text, "test.md", ScopeProject)
	b := Parse(text, "test.md", ScopeProject)

	if !reflect.DeepEqual(a, b) {
		t.Error("Two parses of identical input differ")
	}
}

func TestRuleIDProperties(t *testing.T) {
	base := ruleID("a.md", 1, "text")

	if len(base) != 16 {
		t.Fatalf("Expected 16 hex chars, got %d", len(base))
	}
	if base != ruleID("a.md", 1, "text") {
		t.Error("Identical tuples produced different ids")
	}
	if base == ruleID("a.md", 1, "other") {
		t.Error("Different text produced identical ids")
	}
	if base == ruleID("a.md", 2, "text") {
		t.Error("Different lineStart produced identical ids")
	}
	if base == ruleID("b.md", 1, "text") {
		t.Error("Different sourceFile produced identical ids")
	}
}

func TestParseIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"\x00\x01\x02 binary garbage \xff\xfe",
		strings.Repeat("```\n", 100),
		strings.Repeat("#", 50) + " not a heading level",
		"~~~~~~~~\n- a\n~~~\n~~~~~~~~\nb",
		"- \n* \n#\n---",
	}

	for _, input := range inputs {
		// Must not panic, whatever comes back.
		_ = Parse(input, "test.md", ScopeProject)
	}

	if got := Parse("", "test.md", ScopeProject); len(got) != 0 {
		t.Errorf("Expected no rules for empty input, got %d", len(got))
	}
}
