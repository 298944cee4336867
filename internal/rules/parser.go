// # internal/rules/parser.go
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// headingEntry is one element of the heading stack. Levels on the stack are
// strictly increasing; a heading of level L discards every entry at level >= L
// before being pushed.
type headingEntry struct {
	level int
	title string
}

// fenceState tracks fenced-code blocks. Closing requires a run of the same
// marker character at least as long as the opening run.
type fenceState struct {
	open   bool
	marker byte
	length int
}

func (f fenceState) closes(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < f.length {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != f.marker {
			return false
		}
	}
	return true
}

// ruleBuilder accumulates the lines of the rule currently being grouped.
type ruleBuilder struct {
	bullet    bool
	lines     []string
	lineStart int
	lineEnd   int
}

// Parse turns one document's text into an ordered list of rules. The input is
// assumed to use \n line endings. Parse is total: it never fails, whatever the
// input looks like; malformed structure degrades to a best-effort reading (an
// unterminated fence swallows the rest of the document).
func Parse(text, sourceFile string, scope Scope) []ParsedRule {
	var (
		out      []ParsedRule
		headings []headingEntry
		fence    fenceState
		current  *ruleBuilder
	)

	flush := func() {
		if current == nil {
			return
		}
		b := current
		current = nil

		body := strings.TrimSpace(strings.Join(b.lines, "\n"))
		if body == "" {
			return
		}

		// Snapshot the heading stack; later headings must not leak backward.
		var hierarchy []string
		if len(headings) > 0 {
			hierarchy = make([]string, len(headings))
			for i, h := range headings {
				hierarchy[i] = h.title
			}
		}
		section := ""
		if len(hierarchy) > 0 {
			section = hierarchy[len(hierarchy)-1]
		}

		out = append(out, ParsedRule{
			ID:               ruleID(sourceFile, b.lineStart, body),
			Text:             body,
			Section:          section,
			SectionHierarchy: hierarchy,
			SourceFile:       sourceFile,
			SourceScope:      scope,
			LineStart:        b.lineStart,
			LineEnd:          b.lineEnd,
			Format:           classifyFormat(body, b.bullet),
			Emphasis:         classifyEmphasis(body),
			Imports:          inlineImports(body),
		})
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1

		if fence.open {
			if fence.closes(line) {
				fence.open = false
			}
			continue
		}

		if marker, length, ok := fenceOpening(line); ok {
			flush()
			fence = fenceState{open: true, marker: marker, length: length}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		if level, title, ok := headingLine(trimmed); ok {
			flush()
			for len(headings) > 0 && headings[len(headings)-1].level >= level {
				headings = headings[:len(headings)-1]
			}
			headings = append(headings, headingEntry{level: level, title: title})
			continue
		}

		if isHorizontalRule(trimmed) {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "<!--") {
			flush()
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		// Anything indented under an open bullet belongs to it, regardless of
		// further nesting depth.
		if current != nil && current.bullet && indent > 0 {
			current.lines = append(current.lines, stripBulletMarker(trimmed))
			current.lineEnd = lineNo
			continue
		}

		if isBulletLine(trimmed) {
			flush()
			current = &ruleBuilder{
				bullet:    true,
				lines:     []string{stripBulletMarker(trimmed)},
				lineStart: lineNo,
				lineEnd:   lineNo,
			}
			continue
		}

		if current != nil && !current.bullet {
			current.lines = append(current.lines, trimmed)
			current.lineEnd = lineNo
			continue
		}

		// Plain text at zero indentation ends a bullet and starts a paragraph.
		flush()
		current = &ruleBuilder{
			lines:     []string{trimmed},
			lineStart: lineNo,
			lineEnd:   lineNo,
		}
	}
	flush()

	return out
}

// ruleID derives the stable 16-hex-char identity of a rule. The same
// (sourceFile, lineStart, text) tuple yields the same id on every run; that is
// what lets downstream caching and diffing recognize an unchanged rule.
func ruleID(sourceFile string, lineStart int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", sourceFile, lineStart, text)))
	return hex.EncodeToString(sum[:8])
}

func classifyFormat(text string, fromBullet bool) Format {
	if strings.HasPrefix(text, "`") {
		return FormatCommand
	}
	lower := strings.ToLower(text)
	for _, kw := range directiveKeywords {
		if strings.HasPrefix(lower, kw) {
			return FormatEmphatic
		}
	}
	if fromBullet {
		return FormatBulletPoint
	}
	return FormatParagraph
}

func classifyEmphasis(text string) Emphasis {
	lower := strings.ToLower(text)
	for _, kw := range directiveKeywords {
		if strings.Contains(lower, kw) {
			return EmphasisImportant
		}
	}
	for _, kw := range discouragementKeywords {
		if strings.Contains(lower, kw) {
			return EmphasisNegative
		}
	}
	return EmphasisNormal
}

// fenceOpening reports whether a line opens a fenced block: a run of at least
// three identical backticks or tildes, optionally followed by a language tag.
func fenceOpening(line string) (marker byte, length int, ok bool) {
	t := strings.TrimSpace(line)
	if len(t) < 3 {
		return 0, 0, false
	}
	c := t[0]
	if c != '`' && c != '~' {
		return 0, 0, false
	}
	n := 0
	for n < len(t) && t[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return c, n, true
}

func headingLine(trimmed string) (level int, title string, ok bool) {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0, "", false
	}
	if n < len(trimmed) && trimmed[n] != ' ' && trimmed[n] != '\t' {
		return 0, "", false
	}
	return n, strings.TrimSpace(trimmed[n:]), true
}

// isHorizontalRule matches lines made solely of whitespace and three or more
// repeats of one of -, *, _.
func isHorizontalRule(trimmed string) bool {
	var marker byte
	count := 0
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c != '-' && c != '*' && c != '_' {
			return false
		}
		if marker == 0 {
			marker = c
		} else if c != marker {
			return false
		}
		count++
	}
	return count >= 3
}

func isBulletLine(trimmed string) bool {
	return len(trimmed) >= 2 &&
		(trimmed[0] == '-' || trimmed[0] == '*') &&
		(trimmed[1] == ' ' || trimmed[1] == '\t')
}

func stripBulletMarker(trimmed string) string {
	if isBulletLine(trimmed) {
		return strings.TrimSpace(trimmed[2:])
	}
	return trimmed
}
