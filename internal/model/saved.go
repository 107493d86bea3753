package model

import (
	"strings"
	"time"
)

// CompanyKey normalizes a company name for cache, bookmark, and history
// lookups.
func CompanyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CachedReport is a stored analysis with its expiry.
type CachedReport struct {
	Company   string    `json:"companyName"`
	Provider  string    `json:"provider"`
	Report    Report    `json:"data"`
	CachedAt  time.Time `json:"cachedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Bookmark is a saved company analysis. There is at most one bookmark
// per company.
type Bookmark struct {
	ID        string    `json:"id"`
	Company   string    `json:"companyName"`
	Provider  string    `json:"provider"`
	Sentiment Sentiment `json:"sentiment"`
	Notes     string    `json:"notes,omitempty"`
	Report    Report    `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry records one completed analysis. Only the latest search
// per company is kept.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Company    string    `json:"companyName"`
	Provider   string    `json:"provider"`
	Sentiment  Sentiment `json:"sentiment"`
	Report     Report    `json:"data"`
	SearchedAt time.Time `json:"timestamp"`
}
