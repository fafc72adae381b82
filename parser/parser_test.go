package parser

import (
	"testing"
	"time"

	"github.com/aluiziolira/go-snap-search/models"
)

func fixedClock() time.Time {
	return time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC)
}

func newTestNormalizer() *Normalizer {
	n := NewNormalizer()
	n.now = fixedClock
	return n
}

func TestNormalizeEmptyRecordDefaults(t *testing.T) {
	n := newTestNormalizer()

	p := n.Normalize(map[string]any{}, "artists")

	if p.ID != nil || p.Username != nil || p.DisplayName != nil || p.Description != nil {
		t.Fatalf("expected nil identity fields, got %+v", p)
	}
	if p.SubscriberCount != 0 {
		t.Fatalf("subscriberCount = %d, want 0", p.SubscriberCount)
	}
	if p.IsVerified {
		t.Fatalf("isVerified should default to false")
	}
	if p.Location.Country != nil || p.Location.State != nil || p.Location.DisplayAddress != nil {
		t.Fatalf("expected nil location fields")
	}
	if p.ProfileInfo.Category != "" || p.ProfileInfo.Subcategory != "" {
		t.Fatalf("category/subcategory should default to empty strings")
	}
	if p.ProfileInfo.Tier != nil {
		t.Fatalf("tier should default to nil")
	}
	if p.Flags != (models.Flags{}) {
		t.Fatalf("all flags should default to false, got %+v", p.Flags)
	}
	if p.SearchKeyword != "artists" {
		t.Fatalf("searchKeyword = %q, want %q", p.SearchKeyword, "artists")
	}
	if p.ScrapedAt != "2025-11-04T13:09:13Z" {
		t.Fatalf("scrapedAt = %q, want fixed clock instant", p.ScrapedAt)
	}
}

func TestNormalizeNilRecord(t *testing.T) {
	n := newTestNormalizer()

	p := n.Normalize(nil, "kw")
	if p == nil {
		t.Fatalf("normalize(nil) should still return a profile")
	}
	if p.SearchKeyword != "kw" {
		t.Fatalf("searchKeyword = %q, want %q", p.SearchKeyword, "kw")
	}
}

func TestSubscriberCountCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want int64
	}{
		{name: "digit string", raw: map[string]any{"subscriberCount": "42"}, want: 42},
		{name: "json number", raw: map[string]any{"subscriberCount": float64(42)}, want: 42},
		{name: "trailing garbage", raw: map[string]any{"subscriberCount": "12a"}, want: 0},
		{name: "negative", raw: map[string]any{"subscriberCount": float64(-5)}, want: 0},
		{name: "fractional", raw: map[string]any{"subscriberCount": 42.5}, want: 0},
		{name: "missing", raw: map[string]any{}, want: 0},
		{name: "legacy key", raw: map[string]any{"subscribers": "1200"}, want: 1200},
		{name: "nested fallback", raw: map[string]any{"profileInfo": map[string]any{"subscriberCount": float64(7)}}, want: 7},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw, "kw").SubscriberCount; got != tt.want {
				t.Fatalf("subscriberCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFieldPrecedence(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"id":       "root-id",
		"uuid":     "legacy-uuid",
		"username": "rootuser",
		"profileInfo": map[string]any{
			"username":    "nesteduser",
			"displayName": "Nested Display",
		},
		"metadata": map[string]any{
			"accountId": "meta-account",
		},
	}

	p := n.Normalize(raw, "kw")
	if p.ID == nil || *p.ID != "root-id" {
		t.Fatalf("id should come from root before uuid/metadata, got %v", p.ID)
	}
	if p.Username == nil || *p.Username != "rootuser" {
		t.Fatalf("username should prefer root key, got %v", p.Username)
	}
	if p.DisplayName == nil || *p.DisplayName != "Nested Display" {
		t.Fatalf("displayName should fall back to profileInfo, got %v", p.DisplayName)
	}
	if p.Metadata.AccountID == nil || *p.Metadata.AccountID != "meta-account" {
		t.Fatalf("accountId should come from metadata, got %v", p.Metadata.AccountID)
	}
}

func TestIDFallsBackToNestedAccountID(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"business": map[string]any{"accountId": "biz-123"},
	}
	p := n.Normalize(raw, "kw")
	if p.ID == nil || *p.ID != "biz-123" {
		t.Fatalf("id should fall back to business.accountId, got %v", p.ID)
	}
}

func TestAccountIDFallsBackToID(t *testing.T) {
	n := newTestNormalizer()

	p := n.Normalize(map[string]any{"id": "abc"}, "kw")
	if p.Metadata.AccountID == nil || *p.Metadata.AccountID != "abc" {
		t.Fatalf("accountId should fall back to id, got %v", p.Metadata.AccountID)
	}
}

func TestGroupAliases(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"geo": map[string]any{
			"countryName": "Brazil",
			"region":      "SP",
		},
		"profile": map[string]any{
			"avatarUrl": "https://cdn.example.test/a.png",
		},
		"meta": map[string]any{
			"organizationId":   "org-9",
			"profileIconColor": "#FFFC00",
		},
	}

	p := n.Normalize(raw, "kw")
	if p.Location.Country == nil || *p.Location.Country != "Brazil" {
		t.Fatalf("country should resolve through geo alias, got %v", p.Location.Country)
	}
	if p.Location.State == nil || *p.Location.State != "SP" {
		t.Fatalf("state should resolve region fallback, got %v", p.Location.State)
	}
	if p.ProfileInfo.LogoURL == nil || *p.ProfileInfo.LogoURL != "https://cdn.example.test/a.png" {
		t.Fatalf("logoUrl should resolve through profile alias, got %v", p.ProfileInfo.LogoURL)
	}
	if p.Metadata.OrganizationID == nil || *p.Metadata.OrganizationID != "org-9" {
		t.Fatalf("organizationId should resolve through meta alias, got %v", p.Metadata.OrganizationID)
	}
	if p.Metadata.ProfileIconColor == nil || *p.Metadata.ProfileIconColor != "#FFFC00" {
		t.Fatalf("profileIconColor should resolve through meta alias, got %v", p.Metadata.ProfileIconColor)
	}
}

func TestMalformedGroupTreatedAsAbsent(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"location":    "not a map",
		"profileInfo": []any{"also", "wrong"},
		"flags":       42,
	}

	p := n.Normalize(raw, "kw")
	if p.Location.Country != nil {
		t.Fatalf("country should be nil when location group is malformed")
	}
	if p.ProfileInfo.LogoURL != nil {
		t.Fatalf("logoUrl should be nil when profileInfo group is malformed")
	}
	if p.Flags.HasLenses {
		t.Fatalf("flags should all be false when flags group is malformed")
	}
}

func TestFlagTruthiness(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want bool
	}{
		{name: "flags group true", raw: map[string]any{"flags": map[string]any{"hasLenses": true}}, want: true},
		{name: "root fallback", raw: map[string]any{"hasLenses": true}, want: true},
		{name: "flags false root true", raw: map[string]any{"flags": map[string]any{"hasLenses": false}, "hasLenses": true}, want: true},
		{name: "truthy string", raw: map[string]any{"hasLenses": "yes"}, want: true},
		{name: "truthy number", raw: map[string]any{"hasLenses": float64(1)}, want: true},
		{name: "zero number", raw: map[string]any{"hasLenses": float64(0)}, want: false},
		{name: "absent", raw: map[string]any{}, want: false},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw, "kw").Flags.HasLenses; got != tt.want {
				t.Fatalf("hasLenses = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifiedPrecedence(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"flags": map[string]any{"verified": true},
	}
	if !n.Normalize(raw, "kw").IsVerified {
		t.Fatalf("isVerified should pick up flags.verified legacy key")
	}
}

func TestNumericIDRendered(t *testing.T) {
	n := newTestNormalizer()

	p := n.Normalize(map[string]any{"id": float64(12345)}, "kw")
	if p.ID == nil || *p.ID != "12345" {
		t.Fatalf("numeric id should render without decimal point, got %v", p.ID)
	}
}

func TestResolveSkipsEmptyValues(t *testing.T) {
	root := map[string]any{"displayName": "", "name": "Fallback Name"}
	got := resolve(root, groupSet{}, displayNameSources, nil)
	if got != "Fallback Name" {
		t.Fatalf("resolve = %v, want fallback past empty string", got)
	}
}
