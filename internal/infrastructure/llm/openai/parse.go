package openai

import (
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// locateJSON pulls the one JSON object out of a free-form model response.
// A fenced code block wins; otherwise the largest brace-delimited
// substring. The candidate is run through repair to survive trailing
// commas, single quotes and similar model artifacts.
func locateJSON(raw string) (string, error) {
	candidate := ""
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return "", fmt.Errorf("no json object in response")
		}
		candidate = raw[start : end+1]
	}

	repaired, err := jsonrepair.RepairJSON(candidate)
	if err != nil {
		// Repair is best-effort; let the decoder judge the original.
		return candidate, nil
	}
	return repaired, nil
}
