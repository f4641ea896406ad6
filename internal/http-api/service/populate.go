package service

import (
	"context"
	"log"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/dto"
)

// Bulk population helpers. Each one validates the internal drama id, maps the
// raw upstream payload, and replaces the full sub-entity set. They never
// return errors: a failed sub-entity write is logged and skipped so siblings
// and the surrounding refresh carry on. An empty mapped payload short-circuits
// before any delete, so a transient empty upstream response cannot wipe a
// previously good set.

func (s *dramaService) populateCast(ctx context.Context, dramaID int64, credits tmdb.CreditsResponse) {
	if dramaID <= 0 {
		log.Printf("[Populate] invalid drama id %d, skipping cast", dramaID)
		return
	}
	rows := dto.FromTMDBCredits(dramaID, credits)
	if len(rows) == 0 {
		log.Printf("[Populate] empty cast payload for drama %d, keeping existing rows", dramaID)
		return
	}
	if err := s.store.ReplaceCast(ctx, dramaID, rows); err != nil {
		log.Printf("[Populate] replace cast for drama %d failed: %v", dramaID, err)
		return
	}
	log.Printf("[Populate] stored %d cast members for drama %d", len(rows), dramaID)
}

func (s *dramaService) populateVideos(ctx context.Context, dramaID int64, videos tmdb.VideosResponse) {
	if dramaID <= 0 {
		log.Printf("[Populate] invalid drama id %d, skipping videos", dramaID)
		return
	}
	rows := dto.FromTMDBVideos(dramaID, videos)
	if len(rows) == 0 {
		log.Printf("[Populate] empty video payload for drama %d, keeping existing rows", dramaID)
		return
	}
	if err := s.store.ReplaceVideos(ctx, dramaID, rows); err != nil {
		log.Printf("[Populate] replace videos for drama %d failed: %v", dramaID, err)
		return
	}
	log.Printf("[Populate] stored %d videos for drama %d", len(rows), dramaID)
}

func (s *dramaService) populateImages(ctx context.Context, dramaID int64, images tmdb.ImagesResponse) {
	if dramaID <= 0 {
		log.Printf("[Populate] invalid drama id %d, skipping images", dramaID)
		return
	}
	rows := dto.FromTMDBImages(dramaID, images)
	if len(rows) == 0 {
		log.Printf("[Populate] empty image payload for drama %d, keeping existing rows", dramaID)
		return
	}
	if err := s.store.ReplaceImages(ctx, dramaID, rows); err != nil {
		log.Printf("[Populate] replace images for drama %d failed: %v", dramaID, err)
		return
	}
	log.Printf("[Populate] stored %d images for drama %d", len(rows), dramaID)
}

// populateSeasons enriches seasons missing a synopsis or episode count with a
// per-season detail fetch before persisting. Enrichment is best-effort: a
// failed detail call leaves the season with whatever fields it already has.
func (s *dramaService) populateSeasons(ctx context.Context, dramaID, tmdbID int64, seasons []tmdb.SeasonSummary) {
	if dramaID <= 0 {
		log.Printf("[Populate] invalid drama id %d, skipping seasons", dramaID)
		return
	}

	enriched := make([]tmdb.SeasonSummary, 0, len(seasons))
	for _, season := range seasons {
		if season.Overview == "" || season.EpisodeCount == 0 {
			detail, err := s.catalog.GetSeasonDetail(ctx, tmdbID, season.SeasonNumber, s.cfg.PrimaryLanguage)
			if err != nil {
				log.Printf("[Populate] season %d enrichment failed for drama %d: %v", season.SeasonNumber, dramaID, err)
			} else {
				if season.Overview == "" {
					season.Overview = detail.Overview
				}
				if season.EpisodeCount == 0 {
					season.EpisodeCount = len(detail.Episodes)
				}
				if season.PosterPath == "" {
					season.PosterPath = detail.PosterPath
				}
			}
		}
		enriched = append(enriched, season)
	}

	rows := dto.FromTMDBSeasons(dramaID, enriched)
	if len(rows) == 0 {
		log.Printf("[Populate] empty season payload for drama %d, keeping existing rows", dramaID)
		return
	}
	if err := s.store.ReplaceSeasons(ctx, dramaID, rows); err != nil {
		log.Printf("[Populate] replace seasons for drama %d failed: %v", dramaID, err)
		return
	}
	log.Printf("[Populate] stored %d seasons for drama %d", len(rows), dramaID)
}
