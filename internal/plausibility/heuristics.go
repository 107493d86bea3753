// Package plausibility rejects entities that look fabricated: placeholder
// executives, public figures mistaken for executives, invented deal
// targets and self-referential citations. The rules are string
// heuristics held as data; Filters applies them.
package plausibility

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Heuristics is the curated vocabulary behind the filters. Values are
// treated as immutable; Extend returns a copy.
type Heuristics struct {
	// FakeNames are placeholder people, matched exactly or as substrings.
	FakeNames []string `yaml:"fake_names"`
	// PublicFigures are well-known non-executives, matched exactly.
	PublicFigures []string `yaml:"public_figures"`
	// NotNames are phrases that look like names but are titles, places,
	// headline fragments, page boilerplate or institutions. Matched
	// exactly, as prefix or as suffix.
	NotNames []string `yaml:"not_names"`
	// CompanyIndicators are tokens that mark an organization, not a person.
	CompanyIndicators []string `yaml:"company_indicators"`
	// TitleWords are job-title and headline-verb tokens that never appear
	// as part of a real name.
	TitleWords []string `yaml:"title_words"`
	// PoliticalRoles are government-office keywords matched by containment.
	PoliticalRoles []string `yaml:"political_roles"`
	// PlaceholderLetters are letter runs used as fake company suffixes.
	PlaceholderLetters []string `yaml:"placeholder_letters"`
	// GenericNouns head the "<adjective> <noun> <letter>" template and
	// end a bare category description.
	GenericNouns []string `yaml:"generic_nouns"`
	// GenericTerms is the vocabulary of category descriptions. A target
	// made only of these words and ending in a GenericNoun names no real
	// company.
	GenericTerms []string `yaml:"generic_terms"`
	// PlaceholderTokens mark an explicit non-answer.
	PlaceholderTokens []string `yaml:"placeholder_tokens"`
	// SelfDomains are this system's own hosts; citations to them are
	// hallucinated.
	SelfDomains []string `yaml:"self_domains"`
}

// Default returns the built-in heuristic tables.
func Default() Heuristics {
	return Heuristics{
		FakeNames: []string{
			"john doe", "jane doe", "john smith", "jane smith",
			"bob smith", "alice smith", "mary smith", "james smith",
			"michael johnson", "sarah johnson", "david williams", "jennifer brown",
			"robert jones", "patricia davis", "william miller", "linda wilson",
			"example person", "sample name", "test user", "placeholder",
		},
		PublicFigures: []string{
			"joe biden", "donald trump", "barack obama", "kamala harris", "mike pence",
			"nancy pelosi", "mitch mcconnell", "chuck schumer", "kevin mccarthy",
			"hillary clinton", "bill clinton", "george bush", "george w bush",
			"justin trudeau", "boris johnson", "rishi sunak", "emmanuel macron",
			"angela merkel", "vladimir putin", "xi jinping",
			"elon musk",
		},
		NotNames: []string{
			"vice president", "chief executive", "chief operating", "chief financial",
			"chief technology", "chief marketing", "chief information", "chief product",
			"chief revenue", "chief people", "chief strategy", "chief legal",
			"managing director", "general manager", "senior director", "executive director",
			"senior vice", "executive vice", "group vice", "regional vice",
			"board member", "board director", "advisory board",
			"white house", "wall street", "silicon valley", "new york", "los angeles",
			"san francisco", "announces new", "names new", "appoints new", "hires new",
			"promoted to", "steps down", "steps up", "takes over", "joins as",
			"company announces", "firm announces", "corporation announces",
			"changes chair", "names chair", "elects chair", "appoints chair",
			"adviser to", "advisor to", "counsel to", "assistant to",
			"head of", "director of", "manager of", "leader of",
			"inc announces", "corp announces", "llc announces", "ltd announces",
			"your privacy", "privacy policy", "cookie policy", "terms of", "sign in",
			"sign up", "subscribe now", "read more", "learn more", "click here",
			"breaking news", "latest news", "top stories", "related articles",
			"argus research", "morningstar research", "goldman sachs", "morgan stanley",
			"jp morgan", "bank of america", "wells fargo", "citigroup", "barclays",
			"credit suisse", "deutsche bank", "ubs research", "jefferies research",
		},
		CompanyIndicators: []string{
			"research", "capital", "partners", "holdings", "group", "fund", "trust",
			"investments", "securities", "financial", "consulting", "advisors",
			"associates", "solutions", "services", "management", "ventures",
			"analytics", "technologies", "systems", "networks", "media", "global",
			"international", "corp", "inc", "llc", "ltd", "plc", "sa", "ag",
		},
		TitleWords: []string{
			"chief", "vice", "president", "director", "officer", "manager", "executive",
			"senior", "head", "board", "adviser", "advisor", "counsel", "assistant",
			"announces", "appoints", "names", "hires", "promoted", "appointed",
			"changes", "elects", "nominates", "selects", "picks", "taps",
			"privacy", "policy", "terms", "cookie", "subscribe", "breaking", "latest",
		},
		PoliticalRoles: []string{
			"president of the united states", "vice president of the united states",
			"senator", "congressman", "congresswoman", "representative",
			"secretary of", "minister of", "prime minister", "minister", "governor",
			"mayor", "ambassador", "white house", "administration",
		},
		PlaceholderLetters: []string{"xyz", "abc", "def"},
		GenericNouns: []string{
			"startup", "company", "firm", "bank", "corporation", "corp", "provider",
			"platform", "vendor", "business", "entity", "player", "competitor",
			"target", "insurer", "lender", "fund", "group", "brokerage",
		},
		GenericTerms: []string{
			"a", "an", "the", "undisclosed", "unnamed", "unspecified", "unknown",
			"various", "several", "multiple", "private", "small", "mid-sized",
			"large", "leading", "major", "local", "regional", "national", "global",
			"fintech", "tech", "technology", "software", "saas", "cloud", "ai",
			"data", "analytics", "payments", "payment", "cybersecurity", "security",
			"digital", "financial", "services", "investment", "asset", "wealth",
			"management", "insurance", "consulting", "healthcare", "biotech",
			"bank", "banks", "firm", "firms", "company", "companies", "startup",
			"startups", "provider", "providers", "platform", "vendor", "business",
			"businesses", "competitor", "target", "entity", "player", "lender",
			"insurer", "brokerage", "manager", "advisory", "of",
		},
		PlaceholderTokens: []string{
			"example", "tbd", "n/a", "placeholder", "sample", "lorem ipsum",
			"company name", "target name", "to be determined",
		},
		SelfDomains: []string{"marketpulse.local"},
	}
}

// Extend returns a copy of h with the entries of more appended to each table.
func (h Heuristics) Extend(more Heuristics) Heuristics {
	return Heuristics{
		FakeNames:          concat(h.FakeNames, more.FakeNames),
		PublicFigures:      concat(h.PublicFigures, more.PublicFigures),
		NotNames:           concat(h.NotNames, more.NotNames),
		CompanyIndicators:  concat(h.CompanyIndicators, more.CompanyIndicators),
		TitleWords:         concat(h.TitleWords, more.TitleWords),
		PoliticalRoles:     concat(h.PoliticalRoles, more.PoliticalRoles),
		PlaceholderLetters: concat(h.PlaceholderLetters, more.PlaceholderLetters),
		GenericNouns:       concat(h.GenericNouns, more.GenericNouns),
		GenericTerms:       concat(h.GenericTerms, more.GenericTerms),
		PlaceholderTokens:  concat(h.PlaceholderTokens, more.PlaceholderTokens),
		SelfDomains:        concat(h.SelfDomains, more.SelfDomains),
	}
}

// LoadOverrides reads additional heuristic entries from a YAML file whose
// keys match the Heuristics yaml tags.
func LoadOverrides(path string) (Heuristics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Heuristics{}, eris.Wrapf(err, "plausibility: read %s", path)
	}
	var h Heuristics
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Heuristics{}, eris.Wrapf(err, "plausibility: parse %s", path)
	}
	return h, nil
}

func concat(a, b []string) []string {
	out := slices.Clone(a)
	return append(out, b...)
}
