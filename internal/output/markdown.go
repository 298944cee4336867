// # internal/output/markdown.go
package output

import (
	"fmt"
	"strings"

	"agentscan/internal/rules"
)

var scopeOrder = []rules.Scope{
	rules.ScopeGlobal,
	rules.ScopeProject,
	rules.ScopeProjectLocal,
	rules.ScopeSubdirectory,
}

var formatOrder = []rules.Format{
	rules.FormatCommand,
	rules.FormatEmphatic,
	rules.FormatBulletPoint,
	rules.FormatParagraph,
}

// GenerateMarkdown renders the statistics report for a snapshot.
func GenerateMarkdown(snapshot *rules.RulesSnapshot) (string, error) {
	var b strings.Builder
	stats := snapshot.Stats

	b.WriteString("# Rules Report\n\n")
	b.WriteString(fmt.Sprintf("Project: `%s`\n\n", snapshot.ProjectRoot))
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", snapshot.CreatedAt.Format("2006-01-02 15:04:05 UTC")))

	b.WriteString("## Totals\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---|\n")
	b.WriteString(fmt.Sprintf("| Files | %d |\n", stats.TotalFiles))
	b.WriteString(fmt.Sprintf("| Rules | %d |\n", stats.TotalRules))
	b.WriteString(fmt.Sprintf("| Lines | %d |\n", stats.TotalLines))
	b.WriteString(fmt.Sprintf("| Bytes | %d |\n", stats.TotalBytes))
	b.WriteString(fmt.Sprintf("| Imports | %d |\n", stats.TotalImports))
	b.WriteString("\n")

	b.WriteString("## Rules by scope\n\n")
	b.WriteString("| Scope | Rules |\n")
	b.WriteString("|---|---|\n")
	for _, scope := range scopeOrder {
		if n, ok := stats.ByScope[scope]; ok {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", scope, n))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Rules by format\n\n")
	b.WriteString("| Format | Rules |\n")
	b.WriteString("|---|---|\n")
	for _, format := range formatOrder {
		if n, ok := stats.ByFormat[format]; ok {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", format, n))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Sources\n\n")
	b.WriteString(fmt.Sprintf("- Global rules: %s\n", yesNo(stats.HasGlobalRules)))
	b.WriteString(fmt.Sprintf("- Local overrides: %s\n", yesNo(stats.HasLocalRules)))
	b.WriteString(fmt.Sprintf("- Modular rules: %s\n", yesNo(stats.HasModularRules)))
	b.WriteString("\n")

	if len(snapshot.Files) > 0 {
		b.WriteString("## Files\n\n")
		b.WriteString("| File | Scope | Rules | Imports |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, rf := range snapshot.Files {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %d |\n",
				rf.RelativePath, rf.Scope, len(rf.Rules), len(rf.Imports)))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
