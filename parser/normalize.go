// Package parser maps loosely-structured search records into the stable
// profile schema. The upstream endpoint is undocumented and its response
// shape has drifted over time, so every field is resolved from an ordered
// list of candidate locations instead of a single key.
package parser

import (
	"strconv"
	"time"

	"github.com/aluiziolira/go-snap-search/models"
)

// Ordered candidate locations per output field. Order is load-bearing:
// it decides which value wins when several shapes are present at once.
var (
	idSources = []source{
		{"", "id"},
		{"", "uuid"},
		{"metadata", "accountId"},
		{"business", "accountId"},
	}
	usernameSources = []source{
		{"", "username"},
		{"", "snapchatId"},
		{"profileInfo", "username"},
	}
	displayNameSources = []source{
		{"", "displayName"},
		{"", "name"},
		{"profileInfo", "displayName"},
	}
	descriptionSources = []source{
		{"", "description"},
		{"", "bio"},
		{"profileInfo", "description"},
	}
	subscriberCountSources = []source{
		{"", "subscriberCount"},
		{"", "subscribers"},
		{"profileInfo", "subscriberCount"},
	}
	isVerifiedSources = []source{
		{"", "isVerified"},
		{"profileInfo", "isVerified"},
		{"flags", "isVerified"},
		{"flags", "verified"},
	}
	countrySources = []source{
		{"location", "country"},
		{"location", "countryName"},
		{"", "country"},
	}
	stateSources = []source{
		{"location", "state"},
		{"location", "region"},
		{"location", "province"},
	}
	displayAddressSources = []source{
		{"location", "displayAddress"},
		{"location", "fullAddress"},
		{"", "address"},
	}
	logoURLSources = []source{
		{"profileInfo", "logoUrl"},
		{"profileInfo", "avatarUrl"},
		{"profileInfo", "iconUrl"},
	}
	heroImageURLSources = []source{
		{"profileInfo", "heroImageUrl"},
		{"profileInfo", "bannerUrl"},
		{"profileInfo", "coverUrl"},
	}
	createdAtSources = []source{
		{"profileInfo", "createdAt"},
		{"metadata", "createdAt"},
		{"business", "createdAt"},
	}
	categorySources = []source{
		{"profileInfo", "category"},
		{"business", "category"},
		{"", "category"},
	}
	subcategorySources = []source{
		{"profileInfo", "subcategory"},
	}
	tierSources = []source{
		{"profileInfo", "tier"},
	}
	isLensCreatorSources = []source{
		{"flags", "isLensCreator"},
		{"", "isLensCreator"},
		{"business", "isLensCreator"},
	}
	hasHighlightsSources = []source{
		{"flags", "hasHighlights"},
		{"", "hasHighlights"},
		{"profileInfo", "hasHighlights"},
	}
	hasLensesSources = []source{
		{"flags", "hasLenses"},
		{"", "hasLenses"},
	}
	isBrandProfileSources = []source{
		{"flags", "isBrandProfile"},
		{"", "isBrandProfile"},
	}
	isPlusSubscriberSources = []source{
		{"flags", "isSnapchatPlusSubscriber"},
		{"", "isSnapchatPlusSubscriber"},
	}
	accountIDSources = []source{
		{"metadata", "accountId"},
	}
	organizationIDSources = []source{
		{"metadata", "organizationId"},
		{"business", "organizationId"},
	}
	profileIconColorSources = []source{
		{"metadata", "profileIconColor"},
	}
)

// Normalizer builds fixed-shape profiles from raw search records.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer using the wall clock for timestamps.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize maps an arbitrary search record into the stable profile schema.
// It is total: unexpected shapes become defaults, never panics or errors.
func (n *Normalizer) Normalize(raw map[string]any, keyword string) *models.Profile {
	if raw == nil {
		raw = map[string]any{}
	}

	groups := groupSet{
		"location":    extractGroup(raw, "location", "geo"),
		"profileInfo": extractGroup(raw, "profileInfo", "profile", "businessProfile"),
		"flags":       extractGroup(raw, "flags"),
		"metadata":    extractGroup(raw, "metadata", "meta"),
		"business":    extractGroup(raw, "business"),
	}

	id := asString(resolve(raw, groups, idSources, nil))

	accountID := asString(resolve(raw, groups, accountIDSources, nil))
	if accountID == nil {
		accountID = id
	}

	return &models.Profile{
		ID:              id,
		Username:        asString(resolve(raw, groups, usernameSources, nil)),
		DisplayName:     asString(resolve(raw, groups, displayNameSources, nil)),
		Description:     asString(resolve(raw, groups, descriptionSources, nil)),
		SubscriberCount: coerceCount(resolve(raw, groups, subscriberCountSources, nil)),
		IsVerified:      truthy(resolve(raw, groups, isVerifiedSources, nil)),
		Location: models.Location{
			Country:        asString(resolve(raw, groups, countrySources, nil)),
			State:          asString(resolve(raw, groups, stateSources, nil)),
			DisplayAddress: asString(resolve(raw, groups, displayAddressSources, nil)),
		},
		ProfileInfo: models.ProfileInfo{
			LogoURL:      asString(resolve(raw, groups, logoURLSources, nil)),
			HeroImageURL: asString(resolve(raw, groups, heroImageURLSources, nil)),
			CreatedAt:    asString(resolve(raw, groups, createdAtSources, nil)),
			Category:     asStringDefault(resolve(raw, groups, categorySources, nil), ""),
			Subcategory:  asStringDefault(resolve(raw, groups, subcategorySources, nil), ""),
			Tier:         asString(resolve(raw, groups, tierSources, nil)),
		},
		Flags: models.Flags{
			IsLensCreator:            truthy(resolve(raw, groups, isLensCreatorSources, nil)),
			HasHighlights:            truthy(resolve(raw, groups, hasHighlightsSources, nil)),
			HasLenses:                truthy(resolve(raw, groups, hasLensesSources, nil)),
			IsBrandProfile:           truthy(resolve(raw, groups, isBrandProfileSources, nil)),
			IsSnapchatPlusSubscriber: truthy(resolve(raw, groups, isPlusSubscriberSources, nil)),
		},
		Metadata: models.Metadata{
			AccountID:        accountID,
			OrganizationID:   asString(resolve(raw, groups, organizationIDSources, nil)),
			ProfileIconColor: asString(resolve(raw, groups, profileIconColorSources, nil)),
		},
		SearchKeyword: keyword,
		ScrapedAt:     n.now().UTC().Format(time.RFC3339),
	}
}

// coerceCount parses a subscriber count only when its string rendering is
// all decimal digits. Signed, fractional, or non-numeric values yield 0.
func coerceCount(value any) int64 {
	rep := scalarString(value)
	if rep == "" {
		return 0
	}
	for _, r := range rep {
		if r < '0' || r > '9' {
			return 0
		}
	}
	parsed, err := strconv.ParseInt(rep, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// truthy reports whether a resolved value counts as set. The resolver
// already skips empty values, so any hit means true.
func truthy(value any) bool {
	return value != nil && !isEmpty(value)
}

// asString narrows a scalar to a nullable string. Structured values and
// booleans are treated as absent for string-typed fields.
func asString(value any) *string {
	switch v := value.(type) {
	case string:
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(v)
		return &s
	case int64:
		s := strconv.FormatInt(v, 10)
		return &s
	default:
		return nil
	}
}

func asStringDefault(value any, fallback string) string {
	if s := asString(value); s != nil {
		return *s
	}
	return fallback
}

// scalarString renders a scalar the way the digit check expects: integral
// floats without a decimal point, everything non-scalar as empty.
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
