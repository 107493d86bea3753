package evidence

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/marketpulse/internal/model"
)

const (
	// DefaultLeadershipLimit caps the items taken from leadership articles.
	DefaultLeadershipLimit = 6
	roleExcerptLen         = 180
)

var reputableSources = []string{
	"reuters.com", "bloomberg.com", "wsj.com", "ft.com", "cnbc.com",
	"businessinsider.com", "forbes.com", "fortune.com", "barrons.com",
	"marketwatch.com", "thestreet.com", "investopedia.com",
	"prnewswire.com", "businesswire.com", "globenewswire.com",
	"newsroom.", ".com/newsroom", "/news/", "/press/",
}

// skipHosts are matched against the hostname, so "x.com" does not
// catch "netflix.com".
var skipHosts = []string{
	"linkedin.com", "facebook.com", "twitter.com", "x.com",
	"glassdoor.com", "indeed.com", "ziprecruiter.com",
	"wikipedia.org", "reddit.com",
}

var (
	publisherSuffix = regexp.MustCompile(`(?i)\s*[-|]\s*(Reuters|Bloomberg|CNBC|Forbes|WSJ|Yahoo Finance|Business Wire|PR Newswire).*$`)
	domainSuffix    = regexp.MustCompile(`(?i)\s*[-|]\s*[A-Za-z]+\.[a-z]+$`)
)

// LeadershipFromArticles turns leadership-news search hits into
// displayable leadership items: the headline stands in for the name and
// a content excerpt for the role. Reputable outlets come first; social,
// job-board and wiki hosts are skipped. A non-positive limit means
// DefaultLeadershipLimit.
func LeadershipFromArticles(articles []model.SearchItem, limit int) []model.LeadershipChange {
	if limit <= 0 {
		limit = DefaultLeadershipLimit
	}

	sorted := make([]model.SearchItem, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return containsAny(sorted[i].URL, reputableSources) && !containsAny(sorted[j].URL, reputableSources)
	})

	out := []model.LeadershipChange{}
	seen := map[string]bool{}
	for _, a := range sorted {
		if len(out) >= limit {
			break
		}
		if a.URL == "" || skipped(a.URL) || seen[a.URL] {
			continue
		}
		seen[a.URL] = true

		title := cleanHeadline(a.Title)
		if title == "" {
			continue
		}
		out = append(out, model.LeadershipChange{
			Name:       title,
			Role:       excerpt(a.Description, roleExcerptLen),
			ChangeType: model.ChangeAppointed,
			URL:        a.URL,
			Source:     hostname(a.URL),
		})
	}
	return out
}

func containsAny(rawURL string, needles []string) bool {
	lower := strings.ToLower(rawURL)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func skipped(rawURL string) bool {
	host := strings.ToLower(hostname(rawURL))
	for _, h := range skipHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func cleanHeadline(title string) string {
	title = publisherSuffix.ReplaceAllString(title, "")
	title = domainSuffix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "Source"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
