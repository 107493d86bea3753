package regevents

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/marketpulse/internal/model"
)

const sourceTitleLen = 80

// Thresholds control when two events count as the same event.
type Thresholds struct {
	// AmountTolerance is the maximum amount difference as a fraction of
	// the two amounts' average.
	AmountTolerance float64 `yaml:"amount_tolerance" mapstructure:"amount_tolerance"`
	// YearWindow is the maximum distance in years between reports.
	YearWindow int `yaml:"year_window" mapstructure:"year_window"`
}

// DefaultThresholds returns the empirically tuned 5% / one-year window.
func DefaultThresholds() Thresholds {
	return Thresholds{AmountTolerance: 0.05, YearWindow: 1}
}

// DefaultOfficialRegulators lists regulator tokens in display preference order.
var DefaultOfficialRegulators = []string{"SEC", "DOJ", "CFTC", "OCC", "FINRA", "FCA"}

// Deduper merges duplicate regulatory events.
type Deduper struct {
	thresholds Thresholds
	official   []*regexp.Regexp
}

// NewDeduper builds a Deduper. A non-positive tolerance or a negative
// window falls back to the default.
func NewDeduper(t Thresholds) *Deduper {
	def := DefaultThresholds()
	if t.AmountTolerance <= 0 {
		t.AmountTolerance = def.AmountTolerance
	}
	if t.YearWindow < 0 {
		t.YearWindow = def.YearWindow
	}
	d := &Deduper{thresholds: t}
	for _, tok := range DefaultOfficialRegulators {
		d.official = append(d.official, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(tok)+`\b`))
	}
	return d
}

// Thresholds returns the thresholds in effect.
func (d *Deduper) Thresholds() Thresholds {
	return d.thresholds
}

type normalized struct {
	event   model.RegulatoryEvent
	amount  float64
	hasAmt  bool
	year    int
	hasYear bool
}

// Dedupe groups events greedily in input order: each unmerged event
// claims every later unmerged event similar to it. Similarity is not
// transitive, so A~B and B~C with A!~C leaves C in its own group when A
// claims B first. Groups collapse to one event carrying the others as
// sources. The result is sorted by descending year; events without a
// year sort last. The input slice is not modified.
func (d *Deduper) Dedupe(events []model.RegulatoryEvent) []model.RegulatoryEvent {
	if len(events) == 0 {
		return []model.RegulatoryEvent{}
	}

	norm := make([]normalized, len(events))
	for i, e := range events {
		n := normalized{event: e}
		n.amount, n.hasAmt = NormalizeAmount(e.Amount)
		n.year, n.hasYear = ExtractYear(e.Date)
		norm[i] = n
	}

	merged := make([]bool, len(norm))
	out := make([]normalized, 0, len(norm))
	for i := range norm {
		if merged[i] {
			continue
		}
		merged[i] = true
		group := []int{i}
		for j := range norm {
			if merged[j] {
				continue
			}
			if d.similar(norm[i], norm[j]) {
				merged[j] = true
				group = append(group, j)
			}
		}
		out = append(out, d.collapse(norm, group))
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].year > out[b].year
	})

	result := make([]model.RegulatoryEvent, len(out))
	for i, n := range out {
		result[i] = n.event
	}
	return result
}

func (d *Deduper) similar(a, b normalized) bool {
	if !a.hasAmt || !b.hasAmt {
		return false
	}
	avg := (a.amount + b.amount) / 2
	if avg == 0 || math.Abs(a.amount-b.amount) >= d.thresholds.AmountTolerance*avg {
		return false
	}
	if a.hasYear && b.hasYear && absInt(a.year-b.year) <= d.thresholds.YearWindow {
		return true
	}
	return mentions(a.event.Description, b.event.RegulatoryBody) ||
		mentions(b.event.Description, a.event.RegulatoryBody)
}

// collapse merges a group into its primary event. Single-member groups
// pass through unchanged.
func (d *Deduper) collapse(norm []normalized, group []int) normalized {
	if len(group) == 1 {
		return norm[group[0]]
	}

	primary := group[0]
	found := false
	for _, re := range d.official {
		for _, idx := range group {
			if re.MatchString(norm[idx].event.RegulatoryBody) {
				primary = idx
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	p := norm[primary]
	var sources []model.EventSource
	for _, idx := range group {
		if idx == primary {
			continue
		}
		e := norm[idx].event
		if e.URL == "" || e.URL == p.event.URL {
			continue
		}
		sources = append(sources, model.EventSource{
			URL:            e.URL,
			Title:          truncate(e.Description, sourceTitleLen),
			RegulatoryBody: e.RegulatoryBody,
		})
	}
	p.event.Sources = sources
	return p
}

func mentions(description, body string) bool {
	body = strings.TrimSpace(body)
	if body == "" {
		return false
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(body))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
