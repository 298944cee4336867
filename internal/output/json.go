// # internal/output/json.go
package output

import (
	"encoding/json"

	"agentscan/internal/rules"
)

// GenerateJSON serializes the snapshot verbatim. This is the hand-off format
// for downstream consumers (prompt construction, external caching).
func GenerateJSON(snapshot *rules.RulesSnapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
