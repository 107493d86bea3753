package parse

import (
	"strings"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/plausibility"
)

// emptyCells are optional-cell values that mean "not known".
var emptyCells = map[string]bool{
	"n/a": true, "na": true, "n.a.": true, "none": true, "-": true, "--": true,
	"unknown": true, "undisclosed": true, "not disclosed": true, "null": true,
}

var mentionTypes = enumSet(
	model.MentionCustomer, model.MentionPartner, model.MentionComparison,
	model.MentionCaseStudy, model.MentionPressRelease, model.MentionIntegration,
	model.MentionOther,
)

var changeTypes = enumSet(
	model.ChangeAppointed, model.ChangePromoted, model.ChangeDeparted, model.ChangeExpandedRole,
)

var eventTypes = enumSet(
	model.EventFine, model.EventPenalty, model.EventSettlement, model.EventEnforcement,
	model.EventInvestigation, model.EventConsent, model.EventOrder, model.EventAction,
	model.EventOther,
)

// row is a pipe-split line; reading past the end yields "".
type row []string

func (r row) at(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// opt reads an optional cell, mapping "N/A"-style values to "".
func (r row) opt(i int) string {
	v := r.at(i)
	if emptyCells[strings.ToLower(v)] {
		return ""
	}
	return v
}

func rows(section string) []row {
	var out []row
	for _, line := range lines(section) {
		out = append(out, row(splitPipes(stripMarker(line))))
	}
	return out
}

// ParseCompetitorMentions parses
// "Competitor | type | title | url | date | summary" rows. Rows without a
// competitor, a title, or an external https URL are dropped.
func ParseCompetitorMentions(section string, f *plausibility.Filters) []model.CompetitorMention {
	out := []model.CompetitorMention{}
	for _, r := range rows(section) {
		m := model.CompetitorMention{
			CompetitorName: r.at(0),
			MentionType:    parseEnum(r.at(1), mentionTypes, model.MentionOther),
			Title:          cleanTitle(r.at(2)),
			URL:            ExtractURL(r.at(3)),
			Date:           r.opt(4),
			Summary:        r.at(5),
		}
		if m.CompetitorName == "" || m.Title == "" || !f.ExternalURL(m.URL) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ParseLeadershipChanges parses
// "Name | role | change type | date | previous role | url" rows, keeping
// only plausible names in non-political roles.
func ParseLeadershipChanges(section string, f *plausibility.Filters) []model.LeadershipChange {
	out := []model.LeadershipChange{}
	for _, r := range rows(section) {
		c := model.LeadershipChange{
			Name:         r.at(0),
			Role:         r.at(1),
			ChangeType:   parseEnum(r.at(2), changeTypes, model.ChangeAppointed),
			Date:         r.opt(3),
			PreviousRole: r.opt(4),
			URL:          ExtractURL(r.opt(5)),
		}
		if c.Name == "" || c.Role == "" {
			continue
		}
		if !f.ValidName(c.Name) || f.PoliticalRole(c.Role) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParseMAActivity parses "Year | type | target | deal value | rationale"
// rows, dropping rows whose target looks invented.
func ParseMAActivity(section string, f *plausibility.Filters) []model.MAItem {
	out := []model.MAItem{}
	for _, r := range rows(section) {
		m := model.MAItem{
			Year:      r.at(0),
			Type:      r.at(1),
			Target:    r.at(2),
			DealValue: r.opt(3),
			Rationale: r.opt(4),
		}
		if m.Year == "" || m.Target == "" || f.HallucinatedTarget(m.Target) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ParseRegulatoryLandscape parses "Body | context | url" rows.
func ParseRegulatoryLandscape(section string) []model.RegulatoryBody {
	out := []model.RegulatoryBody{}
	for _, r := range rows(section) {
		b := model.RegulatoryBody{
			Body:    r.at(0),
			Context: r.at(1),
			URL:     ExtractURL(r.opt(2)),
		}
		if b.Body == "" {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ParseRegulatoryEvents parses
// "Date | body | event type | amount | description | url" rows. Rows need
// a regulatory body and a description.
func ParseRegulatoryEvents(section string) []model.RegulatoryEvent {
	out := []model.RegulatoryEvent{}
	for _, r := range rows(section) {
		e := model.RegulatoryEvent{
			Date:           r.opt(0),
			RegulatoryBody: r.at(1),
			EventType:      parseEnum(r.at(2), eventTypes, model.EventOther),
			Amount:         r.opt(3),
			Description:    r.at(4),
			URL:            ExtractURL(r.opt(5)),
		}
		if e.RegulatoryBody == "" || e.Description == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// parseEnum normalizes s ("Case Study", "press-release") and looks it up
// in allowed, trying the whole value and then its first word.
func parseEnum[T ~string](s string, allowed map[string]T, fallback T) T {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	if t, ok := allowed[v]; ok {
		return t
	}
	if first, _, found := strings.Cut(v, "_"); found {
		if t, ok := allowed[first]; ok {
			return t
		}
	}
	return fallback
}

func enumSet[T ~string](values ...T) map[string]T {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return m
}
