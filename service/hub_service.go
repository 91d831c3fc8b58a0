package service

import (
	"context"
	"sort"

	"github.com/periferia-labs/perxia-be/database"
	"github.com/periferia-labs/perxia-be/types"
)

// hubBrowseLimit bounds the record scan backing the category, stats and tag
// endpoints. The curated index is small; a scan plus read-time enrichment
// replaces server-side facets.
const hubBrowseLimit = 200

// HubService is the browse surface over the curated index: every record is
// enriched on the way out, nothing enriched is ever stored.
type HubService struct {
	hub      database.HubIndex
	enricher *EnrichService
}

func NewHubService(hub database.HubIndex, enricher *EnrichService) *HubService {
	return &HubService{
		hub:      hub,
		enricher: enricher,
	}
}

func (s *HubService) IsAvailable() bool {
	return s.hub != nil
}

// SearchItems returns enriched records matching query; "*" lists records.
func (s *HubService) SearchItems(ctx context.Context, query string, top int) ([]types.EnrichedRecord, error) {
	records, err := s.hub.Search(ctx, query, top)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(records), nil
}

// GetByCategory lists enriched records whose derived type matches category.
func (s *HubService) GetByCategory(ctx context.Context, category string) ([]types.EnrichedRecord, error) {
	records, err := s.hub.Search(ctx, "*", hubBrowseLimit)
	if err != nil {
		return nil, err
	}

	var items []types.EnrichedRecord
	for _, enriched := range s.enrichAll(records) {
		if enriched.Type == category {
			items = append(items, enriched)
		}
	}
	return items, nil
}

// Stats counts records per enriched category and collects the ten most
// frequent tags.
func (s *HubService) Stats(ctx context.Context) (*types.HubStats, error) {
	records, err := s.hub.Search(ctx, "*", hubBrowseLimit)
	if err != nil {
		return nil, err
	}

	stats := &types.HubStats{}
	tagCounts := map[string]int{}
	for _, enriched := range s.enrichAll(records) {
		stats.Total++
		switch enriched.Type {
		case types.HubTypeCasoExito:
			stats.Casos++
		case types.HubTypePoc, types.HubTypePov:
			stats.Pocs++
		case types.HubTypeHerramienta:
			stats.Tools++
		default:
			stats.Otros++
		}
		for _, tag := range enriched.Tags {
			tagCounts[tag]++
		}
	}

	stats.TopTags = sortedTags(tagCounts)
	if len(stats.TopTags) > 10 {
		stats.TopTags = stats.TopTags[:10]
	}
	return stats, nil
}

// AvailableTags lists tags with counts, optionally restricted to a category.
func (s *HubService) AvailableTags(ctx context.Context, category string) ([]types.TagCount, error) {
	var items []types.EnrichedRecord
	var err error
	if category != "" && category != "all" {
		items, err = s.GetByCategory(ctx, category)
	} else {
		items, err = s.SearchItems(ctx, "*", hubBrowseLimit)
	}
	if err != nil {
		return nil, err
	}

	tagCounts := map[string]int{}
	for _, enriched := range items {
		for _, tag := range enriched.Tags {
			tagCounts[tag]++
		}
	}
	return sortedTags(tagCounts), nil
}

func (s *HubService) enrichAll(records []types.HubRecord) []types.EnrichedRecord {
	items := make([]types.EnrichedRecord, 0, len(records))
	for _, record := range records {
		items = append(items, s.enricher.Enrich(record))
	}
	return items
}

// sortedTags orders by count descending, name ascending for equal counts so
// the output is stable.
func sortedTags(tagCounts map[string]int) []types.TagCount {
	tags := make([]types.TagCount, 0, len(tagCounts))
	for name, count := range tagCounts {
		tags = append(tags, types.TagCount{Name: name, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}
