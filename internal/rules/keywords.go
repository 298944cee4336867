// # internal/rules/keywords.go
package rules

// Static lookup tables. These are deliberately constants, not configuration:
// rule identity and classification must be stable across runs.

// directiveKeywords mark a rule as strongly binding. Negation phrasings
// ("never", "do not") live here on purpose: a hard prohibition is an
// important rule, not merely a negative one.
var directiveKeywords = []string{
	"important",
	"critical",
	"required",
	"must",
	"never",
	"always",
	"do not",
	"don't",
	"shall",
}

// discouragementKeywords mark soft discouragement, checked only after the
// directive set has not matched.
var discouragementKeywords = []string{
	"avoid",
	"discouraged",
	"refrain",
	"prefer not",
}

// ignoredDirNames are never entered by the recursive subdirectory scan.
var ignoredDirNames = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"__pycache__":  true,
}
