package parse

import (
	"regexp"
	"strings"

	"github.com/sells-group/marketpulse/internal/model"
)

var (
	numberPrefix = regexp.MustCompile(`^\d+\.\s*`)
	keySpace     = regexp.MustCompile(`\s+`)
)

// factAliases rewrites normalized keys the dashboard reads in camel case.
var factAliases = map[string]string{
	"employeecount": "employeeCount",
	"marketcap":     "marketCap",
}

// ParseQuickFacts parses "Key: value" lines. The first colon separates
// key from value; keys are lowercased with whitespace removed.
func ParseQuickFacts(section string) map[string]string {
	facts := map[string]string{}
	for _, line := range strings.Split(section, "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}
		key = keySpace.ReplaceAllString(strings.ToLower(key), "")
		if alias, ok := factAliases[key]; ok {
			key = alias
		}
		facts[key] = value
	}
	return facts
}

// ParseNumberedList returns the items of a "1. item" list.
func ParseNumberedList(section string) []string {
	items := []string{}
	for _, line := range lines(section) {
		if item := strings.TrimSpace(numberPrefix.ReplaceAllString(line, "")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseSources returns the lines that start with "http", de-duplicated in order.
func ParseSources(section string) []string {
	var urls []string
	for _, line := range lines(section) {
		if strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return UniqueStrings(urls)
}

// NormalizeSentiment maps s onto the four sentiment values, defaulting to NEUTRAL.
func NormalizeSentiment(s string) model.Sentiment {
	switch v := model.Sentiment(strings.ToUpper(strings.TrimSpace(s))); v {
	case model.SentimentBullish, model.SentimentBearish, model.SentimentMixed, model.SentimentNeutral:
		return v
	default:
		return model.SentimentNeutral
	}
}

// UniqueStrings returns the non-empty values of in, first occurrence
// first. The result is never nil.
func UniqueStrings(in ...[]string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, list := range in {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
