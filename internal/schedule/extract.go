package schedule

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Extraction strategies, cheapest and most precise first. Models that follow
// instructions return bare JSON; the later strategies trade precision for
// recall against markdown-wrapped or chatty output.
var (
	taggedFencePattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bareFencePattern   = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	inlineCodePattern  = regexp.MustCompile("(?s)`(\\{.*?\\})`")
	greedySpanPattern  = regexp.MustCompile(`(?s)\{.*\}`)
)

type extractStrategy func(text string) (map[string]any, bool)

var extractStrategies = []extractStrategy{
	extractDirect,
	extractPattern(taggedFencePattern),
	extractPattern(bareFencePattern),
	extractPattern(inlineCodePattern),
	extractGreedySpan,
}

// ExtractScheduleObject recovers a single JSON object from free-form model
// output. Strategies are tried in order and the first one that parses wins;
// if none do, a MalformedOutputError carrying the original text is returned.
func ExtractScheduleObject(text string) (map[string]any, error) {
	for _, strategy := range extractStrategies {
		if obj, ok := strategy(text); ok {
			return obj, nil
		}
	}
	return nil, &MalformedOutputError{Raw: text}
}

func extractDirect(text string) (map[string]any, bool) {
	return parseJSONObject(text)
}

func extractPattern(pattern *regexp.Regexp) extractStrategy {
	return func(text string) (map[string]any, bool) {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			return nil, false
		}
		return parseJSONObject(match[1])
	}
}

func extractGreedySpan(text string) (map[string]any, bool) {
	match := greedySpanPattern.FindString(text)
	if match == "" {
		return nil, false
	}
	return parseJSONObject(match)
}

func parseJSONObject(candidate string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
