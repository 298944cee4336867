// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"

	"agentscan/internal/rules"
)

// GenerateTSV emits one row per rule, in snapshot order.
func GenerateTSV(snapshot *rules.RulesSnapshot) (string, error) {
	var buf strings.Builder

	buf.WriteString("ID\tScope\tFormat\tEmphasis\tFile\tLineStart\tLineEnd\tSection\n")

	for _, r := range snapshot.AllRules {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID,
			r.SourceScope,
			r.Format,
			r.Emphasis,
			r.SourceFile,
			r.LineStart,
			r.LineEnd,
			sanitizeField(r.Section),
		))
	}

	return buf.String(), nil
}

func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
