package parse

import (
	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/plausibility"
	"github.com/sells-group/marketpulse/internal/regevents"
)

// Parser assembles a model.Report from a raw LLM response. It holds only
// immutable configuration and is safe for concurrent use.
type Parser struct {
	filters *plausibility.Filters
	deduper *regevents.Deduper
}

// New creates a Parser using the given filters and event deduplicator.
func New(filters *plausibility.Filters, deduper *regevents.Deduper) *Parser {
	return &Parser{filters: filters, deduper: deduper}
}

// Default creates a Parser with the built-in heuristics and thresholds.
func Default() *Parser {
	return New(plausibility.Defaults(), regevents.NewDeduper(regevents.DefaultThresholds()))
}

// Parse builds a report from text. Missing or malformed sections leave
// the matching field at its empty default; text without any tags yields
// an empty NEUTRAL report.
func (p *Parser) Parse(text string) model.Report {
	section := func(tag string) string { return ExtractSection(text, tag) }

	r := model.Report{
		Summary:             section(TagSummary),
		Sentiment:           NormalizeSentiment(section(TagSentiment)),
		QuickFacts:          ParseQuickFacts(section(TagQuickFacts)),
		InvestorDocs:        ParseLinks(section(TagInvestorDocs)),
		KeyPriorities:       ParseNumberedList(section(TagKeyPriorities)),
		GrowthInitiatives:   ParseNumberedList(section(TagGrowthInitiatives)),
		TechNews:            ParseLinks(section(TagTechNews)),
		CaseStudies:         ParseLinks(section(TagCaseStudies)),
		CompetitorMentions:  ParseCompetitorMentions(section(TagCompetitorMentions), p.filters),
		LeadershipChanges:   ParseLeadershipChanges(section(TagLeadershipChanges), p.filters),
		MAActivity:          ParseMAActivity(section(TagMAActivity), p.filters),
		RegulatoryLandscape: ParseRegulatoryLandscape(section(TagRegulatoryLandscape)),
		Sources:             ParseSources(section(TagSources)),
	}

	events := ParseRegulatoryEvents(section(TagRegulatoryEvents))
	r.RegulatoryEvents = p.deduper.Dedupe(events)
	r.Normalize()

	zap.L().Debug("parse: assembled report",
		zap.Int("response_bytes", len(text)),
		zap.Int("tech_news", len(r.TechNews)),
		zap.Int("competitor_mentions", len(r.CompetitorMentions)),
		zap.Int("leadership_changes", len(r.LeadershipChanges)),
		zap.Int("ma_activity", len(r.MAActivity)),
		zap.Int("regulatory_events_raw", len(events)),
		zap.Int("regulatory_events", len(r.RegulatoryEvents)),
	)

	return r
}
