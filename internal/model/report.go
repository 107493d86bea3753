package model

// Sentiment is the overall market perception of a company.
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentMixed   Sentiment = "MIXED"
	SentimentNeutral Sentiment = "NEUTRAL"
)

// MentionType classifies how a competitor references the analyzed company.
type MentionType string

const (
	MentionCustomer     MentionType = "customer"
	MentionPartner      MentionType = "partner"
	MentionComparison   MentionType = "comparison"
	MentionCaseStudy    MentionType = "case_study"
	MentionPressRelease MentionType = "press_release"
	MentionIntegration  MentionType = "integration"
	MentionOther        MentionType = "other"
)

// ChangeType classifies a leadership change.
type ChangeType string

const (
	ChangeAppointed    ChangeType = "appointed"
	ChangePromoted     ChangeType = "promoted"
	ChangeDeparted     ChangeType = "departed"
	ChangeExpandedRole ChangeType = "expanded_role"
)

// EventType classifies a regulatory or enforcement event.
type EventType string

const (
	EventFine          EventType = "fine"
	EventPenalty       EventType = "penalty"
	EventSettlement    EventType = "settlement"
	EventEnforcement   EventType = "enforcement"
	EventInvestigation EventType = "investigation"
	EventConsent       EventType = "consent"
	EventOrder         EventType = "order"
	EventAction        EventType = "action"
	EventOther         EventType = "other"
)

// LinkItem is a titled link with an optional summary.
type LinkItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// CompetitorMention records a competitor referencing the company in external content.
type CompetitorMention struct {
	CompetitorName string      `json:"competitorName"`
	MentionType    MentionType `json:"mentionType"`
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	Date           string      `json:"date,omitempty"`
	Summary        string      `json:"summary"`
}

// LeadershipChange is an executive appointment, promotion or departure.
type LeadershipChange struct {
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	ChangeType   ChangeType `json:"changeType"`
	Date         string     `json:"date,omitempty"`
	PreviousRole string     `json:"previousRole,omitempty"`
	URL          string     `json:"url,omitempty"`
	Source       string     `json:"source,omitempty"` // hostname, set for search-derived items
}

// MAItem is a merger, acquisition or divestiture.
type MAItem struct {
	Year      string `json:"year"`
	Type      string `json:"type"`
	Target    string `json:"target"`
	DealValue string `json:"dealValue,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// RegulatoryBody is a regulator that oversees the company.
type RegulatoryBody struct {
	Body    string `json:"body"`
	Context string `json:"context"`
	URL     string `json:"url,omitempty"`
}

// EventSource is an additional report of a merged regulatory event.
type EventSource struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	RegulatoryBody string `json:"regulatoryBody"`
}

// RegulatoryEvent is a fine, settlement, investigation or similar action.
type RegulatoryEvent struct {
	Date           string        `json:"date"`
	RegulatoryBody string        `json:"regulatoryBody"`
	EventType      EventType     `json:"eventType"`
	Amount         string        `json:"amount,omitempty"`
	Description    string        `json:"description"`
	URL            string        `json:"url"`
	Sources        []EventSource `json:"sources,omitempty"` // set only when duplicates were merged
}

// Report is the structured corporate-intelligence report for one company.
// Every list field is non-nil so consumers never branch on absence.
type Report struct {
	Summary             string              `json:"summary"`
	Sentiment           Sentiment           `json:"sentiment"`
	QuickFacts          map[string]string   `json:"quickFacts"`
	InvestorDocs        []LinkItem          `json:"investorDocs"`
	KeyPriorities       []string            `json:"keyPriorities"`
	GrowthInitiatives   []string            `json:"growthInitiatives"`
	TechNews            []LinkItem          `json:"techNews"`
	CaseStudies         []LinkItem          `json:"caseStudies"`
	CompetitorMentions  []CompetitorMention `json:"competitorMentions"`
	LeadershipChanges   []LeadershipChange  `json:"leadershipChanges"`
	MAActivity          []MAItem            `json:"maActivity"`
	RegulatoryLandscape []RegulatoryBody    `json:"regulatoryLandscape"`
	RegulatoryEvents    []RegulatoryEvent   `json:"regulatoryEvents"`
	Sources             []string            `json:"sources"`
}

// NewReport returns an empty report with every field at its default.
func NewReport() Report {
	r := Report{Sentiment: SentimentNeutral}
	r.Normalize()
	return r
}

// Normalize replaces nil collections with empty ones and an unset
// sentiment with NEUTRAL. Reports decoded from storage pass through here.
func (r *Report) Normalize() {
	if r.Sentiment == "" {
		r.Sentiment = SentimentNeutral
	}
	if r.QuickFacts == nil {
		r.QuickFacts = map[string]string{}
	}
	if r.InvestorDocs == nil {
		r.InvestorDocs = []LinkItem{}
	}
	if r.KeyPriorities == nil {
		r.KeyPriorities = []string{}
	}
	if r.GrowthInitiatives == nil {
		r.GrowthInitiatives = []string{}
	}
	if r.TechNews == nil {
		r.TechNews = []LinkItem{}
	}
	if r.CaseStudies == nil {
		r.CaseStudies = []LinkItem{}
	}
	if r.CompetitorMentions == nil {
		r.CompetitorMentions = []CompetitorMention{}
	}
	if r.LeadershipChanges == nil {
		r.LeadershipChanges = []LeadershipChange{}
	}
	if r.MAActivity == nil {
		r.MAActivity = []MAItem{}
	}
	if r.RegulatoryLandscape == nil {
		r.RegulatoryLandscape = []RegulatoryBody{}
	}
	if r.RegulatoryEvents == nil {
		r.RegulatoryEvents = []RegulatoryEvent{}
	}
	if r.Sources == nil {
		r.Sources = []string{}
	}
}

// SearchItem is a single web-search hit.
type SearchItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SearchBundle holds web-search results gathered independently of the
// LLM provider, grouped by category.
type SearchBundle struct {
	News         []SearchItem `json:"news"`
	CaseStudies  []SearchItem `json:"caseStudies"`
	Info         []SearchItem `json:"info"`
	InvestorDocs []SearchItem `json:"investorDocs"`
	Leadership   []SearchItem `json:"leadership,omitempty"`
}
