package service

import (
	"context"
	"fmt"
	"sort"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/dto"
)

// GetWatchProviders is a live passthrough that flattens per-country provider
// lists into country-agnostic flatrate/rent/buy arrays. A provider appearing
// in several countries is kept once, with the link of the highest-priority
// country that lists it.
func (s *dramaService) GetWatchProviders(ctx context.Context, tmdbID int64) (*dto.ProviderListResponse, error) {
	key := fmt.Sprintf("providers:%d", tmdbID)
	var hot dto.ProviderListResponse
	if s.hotCache.GetJSON(ctx, key, &hot) {
		return &hot, nil
	}

	upstream, err := s.catalog.GetWatchProviders(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("fetch watch providers: %w", err)
	}

	merged := mergeProviders(tmdbID, upstream, s.cfg.ProviderCountries)
	s.hotCache.SetJSON(ctx, key, merged, s.cfg.HotCacheTTL)
	return merged, nil
}

func mergeProviders(tmdbID int64, upstream *tmdb.WatchProvidersResponse, priority []string) *dto.ProviderListResponse {
	merged := &dto.ProviderListResponse{
		TMDBID:   tmdbID,
		Flatrate: []dto.ProviderResponse{},
		Rent:     []dto.ProviderResponse{},
		Buy:      []dto.ProviderResponse{},
	}
	if upstream == nil || len(upstream.Results) == 0 {
		return merged
	}

	seenFlatrate := make(map[int64]bool)
	seenRent := make(map[int64]bool)
	seenBuy := make(map[int64]bool)

	for _, country := range orderedCountries(upstream.Results, priority) {
		lists := upstream.Results[country]
		merged.Flatrate = appendProviders(merged.Flatrate, seenFlatrate, lists.Flatrate, country, lists.Link)
		merged.Rent = appendProviders(merged.Rent, seenRent, lists.Rent, country, lists.Link)
		merged.Buy = appendProviders(merged.Buy, seenBuy, lists.Buy, country, lists.Link)
	}
	return merged
}

// orderedCountries yields the priority countries first, in their configured
// order, then the remaining countries sorted for determinism.
func orderedCountries(results map[string]tmdb.CountryProviders, priority []string) []string {
	ordered := make([]string, 0, len(results))
	taken := make(map[string]bool, len(results))

	for _, country := range priority {
		if _, ok := results[country]; ok && !taken[country] {
			ordered = append(ordered, country)
			taken[country] = true
		}
	}

	rest := make([]string, 0, len(results))
	for country := range results {
		if !taken[country] {
			rest = append(rest, country)
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

func appendProviders(out []dto.ProviderResponse, seen map[int64]bool, providers []tmdb.Provider, country, link string) []dto.ProviderResponse {
	for _, p := range providers {
		if seen[p.ProviderID] {
			continue
		}
		seen[p.ProviderID] = true
		out = append(out, dto.ProviderResponse{
			ProviderID:   p.ProviderID,
			ProviderName: p.ProviderName,
			LogoPath:     dto.NormalizeImagePath(p.LogoPath),
			Link:         link,
			Country:      country,
		})
	}
	return out
}
