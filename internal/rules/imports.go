// # internal/rules/imports.go
package rules

import (
	"os"
	"path/filepath"
	"strings"
)

// ExtractFileImports scans the whole raw document for @path references,
// including lines the rule parser groups away. Lines inside fenced blocks
// contribute nothing; occurrences inside inline code spans are excluded.
func ExtractFileImports(text, sourceFile string) []ImportReference {
	var refs []ImportReference
	var fence fenceState

	for i, line := range strings.Split(text, "\n") {
		if fence.open {
			if fence.closes(line) {
				fence.open = false
			}
			continue
		}
		if marker, length, ok := fenceOpening(line); ok {
			fence = fenceState{open: true, marker: marker, length: length}
			continue
		}
		for _, tok := range scanLineImports(line) {
			refs = append(refs, ImportReference{
				Path:         tok,
				ResolvedPath: resolveImportPath(tok, sourceFile),
				Line:         i + 1,
			})
		}
	}

	return refs
}

// inlineImports collects @path tokens from a rule's joined text. Inline code
// spans are tracked per physical line.
func inlineImports(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, scanLineImports(line)...)
	}
	return out
}

// scanLineImports finds @ immediately followed by a contiguous non-whitespace
// token, skipping occurrences inside backtick-delimited inline code spans.
func scanLineImports(line string) []string {
	var out []string
	inSpan := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '`':
			inSpan = !inSpan
		case line[i] == '@' && !inSpan:
			j := i + 1
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				if line[j] == '`' {
					inSpan = !inSpan
				}
				j++
			}
			if j > i+1 {
				out = append(out, line[i+1:j])
			}
			i = j - 1
		}
	}
	return out
}

// resolveImportPath resolves a reference against the directory containing the
// source document. URL-looking tokens are left unresolved.
func resolveImportPath(token, sourceFile string) string {
	if strings.Contains(token, "://") {
		return ""
	}
	if token == "~" || strings.HasPrefix(token, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(token, "~"))
	}
	if filepath.IsAbs(token) {
		return filepath.Clean(token)
	}
	return filepath.Join(filepath.Dir(sourceFile), token)
}
