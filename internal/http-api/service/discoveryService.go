package service

import (
	"context"
	"fmt"
	"log"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/dto"
)

// List sources for the discovery endpoints.
const (
	listSourceCache    = "cache"
	listSourceUpstream = "upstream"

	cachedListSize = 20
)

// Search is always a live passthrough; results are never cached.
func (s *dramaService) Search(ctx context.Context, query string, page int) (*dto.DramaListResponse, error) {
	if page <= 0 {
		page = 1
	}

	results, err := s.catalog.SearchDramas(ctx, query, page, s.cfg.PrimaryLanguage)
	if err != nil {
		return nil, fmt.Errorf("search dramas: %w", err)
	}
	return pagedToListResponse(results, listSourceUpstream), nil
}

// GetPopular serves the first page from the cache when any rows exist (no
// staleness applied); otherwise it falls through to upstream and populates
// the top results in the background.
func (s *dramaService) GetPopular(ctx context.Context, page int) (*dto.DramaListResponse, error) {
	if page <= 0 {
		page = 1
	}

	if page == 1 {
		cached, err := s.store.ListPopular(ctx, cachedListSize)
		if err != nil {
			log.Printf("[Discovery] popular cache read failed, falling through to upstream: %v", err)
		}
		if len(cached) > 0 {
			resp := &dto.DramaListResponse{
				Page:    1,
				Results: make([]dto.DramaBasicResponse, 0, len(cached)),
				Source:  listSourceCache,
			}
			for _, d := range cached {
				resp.Results = append(resp.Results, dto.FromModelToBasicResponse(d))
			}
			return resp, nil
		}
	}

	key := fmt.Sprintf("popular:p%d", page)
	var hot dto.DramaListResponse
	if s.hotCache.GetJSON(ctx, key, &hot) {
		return &hot, nil
	}

	results, err := s.catalog.GetPopular(ctx, page, s.cfg.PrimaryLanguage)
	if err != nil {
		return nil, fmt.Errorf("fetch popular dramas: %w", err)
	}

	s.populateTopResults(ctx, results.Results)

	resp := pagedToListResponse(results, listSourceUpstream)
	s.hotCache.SetJSON(ctx, key, resp, s.cfg.HotCacheTTL)
	return resp, nil
}

// GetTrending mirrors GetPopular for the weekly trending list.
func (s *dramaService) GetTrending(ctx context.Context) (*dto.DramaListResponse, error) {
	cached, err := s.store.ListPopular(ctx, cachedListSize)
	if err != nil {
		log.Printf("[Discovery] trending cache read failed, falling through to upstream: %v", err)
	}
	if len(cached) > 0 {
		resp := &dto.DramaListResponse{
			Page:    1,
			Results: make([]dto.DramaBasicResponse, 0, len(cached)),
			Source:  listSourceCache,
		}
		for _, d := range cached {
			resp.Results = append(resp.Results, dto.FromModelToBasicResponse(d))
		}
		return resp, nil
	}

	const key = "trending:week"
	var hot dto.DramaListResponse
	if s.hotCache.GetJSON(ctx, key, &hot) {
		return &hot, nil
	}

	results, err := s.catalog.GetTrending(ctx, s.cfg.PrimaryLanguage)
	if err != nil {
		return nil, fmt.Errorf("fetch trending dramas: %w", err)
	}

	s.populateTopResults(ctx, results.Results)

	resp := pagedToListResponse(results, listSourceUpstream)
	s.hotCache.SetJSON(ctx, key, resp, s.cfg.HotCacheTTL)
	return resp, nil
}

// populateTopResults upserts the title rows of the top N upstream results in
// the background so the next list request can come from the cache. Only the
// title row is written; sub-entities arrive on the first detail request.
func (s *dramaService) populateTopResults(ctx context.Context, results []tmdb.DramaDetails) {
	limit := s.cfg.PopulateTopN
	if limit > len(results) {
		limit = len(results)
	}
	if limit <= 0 {
		return
	}

	top := make([]tmdb.DramaDetails, limit)
	copy(top, results[:limit])

	bg := context.WithoutCancel(ctx)
	go func() {
		saved := 0
		for _, doc := range top {
			row := dto.FromTMDBDetail(doc)
			if _, err := s.store.UpsertDrama(bg, &row); err != nil {
				log.Printf("[Discovery] background populate of tmdb_id=%d failed: %v", doc.ID, err)
				continue
			}
			saved++
		}
		log.Printf("[Discovery] background-populated %d/%d titles", saved, limit)
	}()
}

func pagedToListResponse(results *tmdb.PagedResults, source string) *dto.DramaListResponse {
	resp := &dto.DramaListResponse{
		Page:         results.Page,
		TotalPages:   results.TotalPages,
		TotalResults: results.TotalResults,
		Results:      make([]dto.DramaBasicResponse, 0, len(results.Results)),
		Source:       source,
	}
	for _, doc := range results.Results {
		resp.Results = append(resp.Results, dto.FromTMDBToBasicResponse(doc))
	}
	return resp
}
