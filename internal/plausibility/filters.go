package plausibility

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	minNameLen = 5
	maxNameLen = 40
)

var (
	whitespace       = regexp.MustCompile(`\s+`)
	bracketHolder    = regexp.MustCompile(`[\[<{][^\]>}]*[\]>}]`)
	nonWordSeparator = regexp.MustCompile(`[^\p{L}\p{N}&'-]+`)
)

// Filters applies a fixed set of Heuristics. It holds no mutable state
// and is safe for concurrent use.
type Filters struct {
	fakeNames         []string
	publicFigures     map[string]bool
	notNames          []string
	companyIndicators map[string]bool
	titleWords        map[string]bool
	politicalRoles    []string
	genericTerms      map[string]bool
	genericHeads      map[string]bool
	selfDomains       []string

	placeholderLetters *regexp.Regexp
	genericTemplate    *regexp.Regexp
	placeholderTokens  *regexp.Regexp
}

// New compiles h into Filters.
func New(h Heuristics) *Filters {
	f := &Filters{
		fakeNames:         lowerAll(h.FakeNames),
		publicFigures:     toSet(h.PublicFigures),
		notNames:          lowerAll(h.NotNames),
		companyIndicators: toSet(h.CompanyIndicators),
		titleWords:        toSet(h.TitleWords),
		politicalRoles:    lowerAll(h.PoliticalRoles),
		genericTerms:      toSet(h.GenericTerms),
		genericHeads:      headNouns(h.GenericNouns),
		selfDomains:       lowerAll(h.SelfDomains),
	}

	f.placeholderLetters = wordAlternation(h.PlaceholderLetters)
	f.placeholderTokens = wordAlternation(h.PlaceholderTokens)

	// "Fintech Startup XYZ", "Regional Bank A", "Software Company B2".
	if len(h.GenericNouns) > 0 {
		f.genericTemplate = regexp.MustCompile(
			`^(?:[\p{L}-]+\s+){1,2}(?i:` + quoteAll(h.GenericNouns) + `)\s+[A-Z][A-Z0-9]{0,2}$`,
		)
	}
	return f
}

// Defaults returns Filters compiled from Default().
func Defaults() *Filters {
	return New(Default())
}

// ValidName reports whether name plausibly belongs to a real executive.
func (f *Filters) ValidName(name string) bool {
	name = clean(name)
	lower := strings.ToLower(name)

	for _, fake := range f.fakeNames {
		if strings.Contains(lower, fake) {
			return false
		}
	}
	if f.publicFigures[lower] {
		return false
	}
	for _, phrase := range f.notNames {
		if strings.HasPrefix(lower, phrase) || strings.HasSuffix(lower, phrase) {
			return false
		}
	}
	for _, tok := range nonWordSeparator.Split(lower, -1) {
		if f.companyIndicators[tok] {
			return false
		}
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !startsUpper(p) {
			return false
		}
		if f.titleWords[strings.ToLower(p)] {
			return false
		}
	}
	if len([]rune(parts[0])) < 2 || len([]rune(parts[len(parts)-1])) < 2 {
		return false
	}

	n := len([]rune(name))
	return n >= minNameLen && n <= maxNameLen
}

// PoliticalRole reports whether role names a government office rather
// than a corporate position. A bare "President" is treated as political.
func (f *Filters) PoliticalRole(role string) bool {
	lower := strings.ToLower(clean(role))
	for _, kw := range f.politicalRoles {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return lower == "president" || lower == "the president"
}

// HallucinatedTarget reports whether an M&A target looks invented.
func (f *Filters) HallucinatedTarget(target string) bool {
	target = clean(target)
	if target == "" {
		return true
	}
	if f.placeholderLetters != nil && f.placeholderLetters.MatchString(target) {
		return true
	}
	if f.placeholderTokens != nil && f.placeholderTokens.MatchString(target) {
		return true
	}
	if bracketHolder.MatchString(target) {
		return true
	}
	if f.genericTemplate != nil && f.genericTemplate.MatchString(target) {
		return true
	}
	return f.genericOnly(target)
}

// ExternalURL reports whether raw is an https URL that points neither at
// localhost nor at one of this system's own domains.
func (f *Filters) ExternalURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "localhost") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "127.0.0.1" || host == "::1" {
		return false
	}
	for _, d := range f.selfDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return false
		}
	}
	return true
}

// genericOnly reports whether s is a bare category description such as
// "Regional Bank": every word is category vocabulary and the last one is
// a category noun. "Global Payments" and "Tech Data" name companies.
func (f *Filters) genericOnly(s string) bool {
	var last string
	for _, w := range nonWordSeparator.Split(strings.ToLower(s), -1) {
		if w == "" {
			continue
		}
		if !f.genericTerms[w] {
			return false
		}
		last = w
	}
	return f.genericHeads[last]
}

// headNouns returns nouns with their plural forms.
func headNouns(nouns []string) map[string]bool {
	out := make(map[string]bool, 3*len(nouns))
	for _, n := range lowerAll(nouns) {
		if n == "" {
			continue
		}
		out[n] = true
		switch {
		case strings.HasSuffix(n, "y"):
			out[strings.TrimSuffix(n, "y")+"ies"] = true
		case strings.HasSuffix(n, "s"):
			out[n+"es"] = true
		default:
			out[n+"s"] = true
		}
	}
	return out
}

func clean(s string) string {
	s = norm.NFKC.String(s)
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func wordAlternation(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + quoteAll(words) + `)(?:$|[^\p{L}\p{N}])`)
}

func quoteAll(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(strings.TrimSpace(w)))
	}
	return strings.Join(quoted, "|")
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func toSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range lowerAll(in) {
		out[s] = true
	}
	return out
}
