// Package evidence folds live web-search results into a parsed report.
package evidence

import (
	"slices"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/parse"
)

// Merge returns a copy of report in which non-empty search categories
// replace the provider's link sections. Sources become the union of the
// report's sources and every search URL. Neither argument is modified.
func Merge(report model.Report, bundle *model.SearchBundle) model.Report {
	out := clone(report)
	if bundle == nil {
		return out
	}

	if len(bundle.News) > 0 {
		out.TechNews = toLinks(bundle.News)
	}
	if len(bundle.CaseStudies) > 0 {
		out.CaseStudies = toLinks(bundle.CaseStudies)
	}
	if len(bundle.InvestorDocs) > 0 {
		out.InvestorDocs = toLinks(bundle.InvestorDocs)
	}

	out.Sources = parse.UniqueStrings(
		report.Sources,
		urls(bundle.News),
		urls(bundle.CaseStudies),
		urls(bundle.InvestorDocs),
		urls(bundle.Info),
	)
	return out
}

func toLinks(items []model.SearchItem) []model.LinkItem {
	out := make([]model.LinkItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.LinkItem{Title: it.Title, URL: it.URL, Summary: it.Description})
	}
	return out
}

func urls(items []model.SearchItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.URL)
	}
	return out
}

// clone copies every collection of r so the result can be edited freely.
func clone(r model.Report) model.Report {
	out := r
	if r.QuickFacts != nil {
		out.QuickFacts = make(map[string]string, len(r.QuickFacts))
		for k, v := range r.QuickFacts {
			out.QuickFacts[k] = v
		}
	}
	out.InvestorDocs = slices.Clone(r.InvestorDocs)
	out.KeyPriorities = slices.Clone(r.KeyPriorities)
	out.GrowthInitiatives = slices.Clone(r.GrowthInitiatives)
	out.TechNews = slices.Clone(r.TechNews)
	out.CaseStudies = slices.Clone(r.CaseStudies)
	out.CompetitorMentions = slices.Clone(r.CompetitorMentions)
	out.LeadershipChanges = slices.Clone(r.LeadershipChanges)
	out.MAActivity = slices.Clone(r.MAActivity)
	out.RegulatoryLandscape = slices.Clone(r.RegulatoryLandscape)
	out.RegulatoryEvents = slices.Clone(r.RegulatoryEvents)
	out.Sources = slices.Clone(r.Sources)
	out.Normalize()
	return out
}
