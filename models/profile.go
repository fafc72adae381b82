// Package models defines data structures for the profile search scraper.
package models

import "time"

// Profile is the normalized shape of one search result. Every field is
// populated on normalization; nullable source fields are pointers so a
// missing value serializes as JSON null rather than "".
type Profile struct {
	ID              *string     `json:"id"`
	Username        *string     `json:"username"`
	DisplayName     *string     `json:"displayName"`
	Description     *string     `json:"description"`
	SubscriberCount int64       `json:"subscriberCount"`
	IsVerified      bool        `json:"isVerified"`
	Location        Location    `json:"location"`
	ProfileInfo     ProfileInfo `json:"profileInfo"`
	Flags           Flags       `json:"flags"`
	Metadata        Metadata    `json:"metadata"`
	SearchKeyword   string      `json:"searchKeyword"`
	ScrapedAt       string      `json:"scrapedAt"`
}

// Location groups the geographic fields of a profile.
type Location struct {
	Country        *string `json:"country"`
	State          *string `json:"state"`
	DisplayAddress *string `json:"displayAddress"`
}

// ProfileInfo groups imagery and descriptive metadata.
type ProfileInfo struct {
	LogoURL      *string `json:"logoUrl"`
	HeroImageURL *string `json:"heroImageUrl"`
	CreatedAt    *string `json:"createdAt"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Tier         *string `json:"tier"`
}

// Flags groups the boolean feature markers of a profile.
type Flags struct {
	IsLensCreator            bool `json:"isLensCreator"`
	HasHighlights            bool `json:"hasHighlights"`
	HasLenses                bool `json:"hasLenses"`
	IsBrandProfile           bool `json:"isBrandProfile"`
	IsSnapchatPlusSubscriber bool `json:"isSnapchatPlusSubscriber"`
}

// Metadata groups account identifiers and presentation metadata.
type Metadata struct {
	AccountID        *string `json:"accountId"`
	OrganizationID   *string `json:"organizationId"`
	ProfileIconColor *string `json:"profileIconColor"`
}

// Record projects the profile into a nested map for the exporters.
// Nil pointers surface as nil values so downstream flattening keeps the
// column present with an empty cell.
func (p *Profile) Record() map[string]any {
	return map[string]any{
		"id":              strValue(p.ID),
		"username":        strValue(p.Username),
		"displayName":     strValue(p.DisplayName),
		"description":     strValue(p.Description),
		"subscriberCount": p.SubscriberCount,
		"isVerified":      p.IsVerified,
		"location": map[string]any{
			"country":        strValue(p.Location.Country),
			"state":          strValue(p.Location.State),
			"displayAddress": strValue(p.Location.DisplayAddress),
		},
		"profileInfo": map[string]any{
			"logoUrl":      strValue(p.ProfileInfo.LogoURL),
			"heroImageUrl": strValue(p.ProfileInfo.HeroImageURL),
			"createdAt":    strValue(p.ProfileInfo.CreatedAt),
			"category":     p.ProfileInfo.Category,
			"subcategory":  p.ProfileInfo.Subcategory,
			"tier":         strValue(p.ProfileInfo.Tier),
		},
		"flags": map[string]any{
			"isLensCreator":            p.Flags.IsLensCreator,
			"hasHighlights":            p.Flags.HasHighlights,
			"hasLenses":                p.Flags.HasLenses,
			"isBrandProfile":           p.Flags.IsBrandProfile,
			"isSnapchatPlusSubscriber": p.Flags.IsSnapchatPlusSubscriber,
		},
		"metadata": map[string]any{
			"accountId":        strValue(p.Metadata.AccountID),
			"organizationId":   strValue(p.Metadata.OrganizationID),
			"profileIconColor": strValue(p.Metadata.ProfileIconColor),
		},
		"searchKeyword": p.SearchKeyword,
		"scrapedAt":     p.ScrapedAt,
	}
}

func strValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// SearchResult holds the overall outcome of a keyword batch run.
type SearchResult struct {
	Profiles       []*Profile
	StartTime      time.Time
	EndTime        time.Time
	KeywordCount   int
	RequestCount   int
	RetryCount     int
	ErrorCount     int
	SkippedRecords int
	ErrorsByType   map[string]int
}
