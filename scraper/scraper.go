// Package scraper fetches profile search results and drives the keyword
// batch. Failures are contained per keyword and per record: one bad
// keyword or one malformed record never aborts the batch.
package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-snap-search/config"
	"github.com/aluiziolira/go-snap-search/models"
	"github.com/aluiziolira/go-snap-search/parser"
)

// containerKeys are tried in order when a payload is a map. The order is
// load-bearing: when several keys are present at once, the earlier one
// supplies the record list.
var containerKeys = []string{"profiles", "results", "accounts", "creators", "data", "items"}

// Searcher is the raw search capability consumed by the driver.
type Searcher interface {
	Search(ctx context.Context, keyword string) (any, error)
}

// Scraper runs keyword searches and normalizes the results.
type Scraper struct {
	cfg        *config.Config
	searcher   Searcher
	client     *Client
	normalizer *parser.Normalizer
	Metrics    *Metrics
}

// NewScraper builds a scraper with its own HTTP client.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	metrics := NewMetrics()
	client, err := NewClient(cfg, metrics)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:        cfg,
		searcher:   client,
		client:     client,
		normalizer: parser.NewNormalizer(),
		Metrics:    metrics,
	}, nil
}

// SearchAll searches every keyword in input order and returns the
// concatenated normalized profiles. It never fails: keywords and records
// that error are logged, counted, and skipped.
func (s *Scraper) SearchAll(ctx context.Context, keywords []string) *models.SearchResult {
	result := &models.SearchResult{
		StartTime:    time.Now(),
		KeywordCount: len(keywords),
		ErrorsByType: make(map[string]int),
	}

	for _, keyword := range keywords {
		if ctx.Err() != nil {
			slog.Info("search cancelled", slog.Int("profiles", len(result.Profiles)))
			break
		}

		slog.Info("searching keyword", slog.String("keyword", keyword))

		payload, err := s.searcher.Search(ctx, keyword)
		if err != nil {
			category := errorTypeLabel(err)
			result.ErrorCount++
			result.ErrorsByType[category]++
			slog.Error("keyword search failed",
				slog.String("keyword", keyword),
				slog.String("category", category),
				slog.Any("error", err),
			)
			continue
		}

		records := extractRecords(payload)
		if len(records) == 0 {
			slog.Info("no profiles found", slog.String("keyword", keyword))
			continue
		}
		if s.cfg.MaxProfiles > 0 && len(records) > s.cfg.MaxProfiles {
			records = records[:s.cfg.MaxProfiles]
		}

		for _, raw := range records {
			profile := s.normalizeRecord(raw, keyword)
			if profile == nil {
				result.SkippedRecords++
				s.Metrics.IncSkipped()
				continue
			}
			result.Profiles = append(result.Profiles, profile)
			s.Metrics.IncProfiles()
		}

		slog.Debug("keyword complete",
			slog.String("keyword", keyword),
			slog.Int("records", len(records)),
		)
	}

	if s.client != nil {
		result.RequestCount = s.client.RequestCount()
		result.RetryCount = s.client.RetryCount()
	}
	result.EndTime = time.Now()
	return result
}

// normalizeRecord shields the batch from a panicking normalization so a
// single malformed record is skipped, not fatal.
func (s *Scraper) normalizeRecord(raw map[string]any, keyword string) (profile *models.Profile) {
	defer func() {
		if r := recover(); r != nil {
			profile = nil
			slog.Error("profile normalization failed",
				slog.String("keyword", keyword),
				slog.Any("panic", r),
			)
		}
	}()
	return s.normalizer.Normalize(raw, keyword)
}

// extractRecords pulls the candidate record list out of a payload. List
// payloads contribute their map-shaped entries; map payloads are probed
// for the first container key holding a list; anything else yields zero
// records.
func extractRecords(payload any) []map[string]any {
	switch p := payload.(type) {
	case []any:
		return mapEntries(p)
	case map[string]any:
		for _, key := range containerKeys {
			if list, ok := p[key].([]any); ok {
				return mapEntries(list)
			}
		}
	}
	return nil
}

func mapEntries(list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if record, ok := entry.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}
