// Package parse turns the tagged, pipe-delimited text an LLM returns for
// a company analysis into a model.Report. Every parser treats empty or
// malformed input as "no data" and never fails.
package parse

import (
	"regexp"
	"strings"
	"sync"
)

// Tag names in the analysis response vocabulary.
const (
	TagSummary             = "SUMMARY"
	TagSentiment           = "SENTIMENT"
	TagQuickFacts          = "QUICK_FACTS"
	TagInvestorDocs        = "INVESTOR_DOCS"
	TagKeyPriorities       = "KEY_PRIORITIES"
	TagGrowthInitiatives   = "GROWTH_INITIATIVES"
	TagTechNews            = "TECH_NEWS"
	TagCaseStudies         = "CASE_STUDIES"
	TagCompetitorMentions  = "COMPETITOR_MENTIONS"
	TagLeadershipChanges   = "LEADERSHIP_CHANGES"
	TagMAActivity          = "MA_ACTIVITY"
	TagRegulatoryLandscape = "REGULATORY_LANDSCAPE"
	TagRegulatoryEvents    = "REGULATORY_EVENTS"
	TagSources             = "SOURCES"
)

// sectionPatterns caches compiled [TAG]...[/TAG] patterns by tag name.
var sectionPatterns sync.Map

// ExtractSection returns the trimmed content of the first [tag]...[/tag]
// block in text, matching the tag case-insensitively across lines, or ""
// when the block is absent.
func ExtractSection(text, tag string) string {
	m := sectionPattern(tag).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func sectionPattern(tag string) *regexp.Regexp {
	if re, ok := sectionPatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	q := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(`(?is)\[` + q + `\](.*?)\[/` + q + `\]`)
	actual, _ := sectionPatterns.LoadOrStore(tag, re)
	return actual.(*regexp.Regexp)
}
