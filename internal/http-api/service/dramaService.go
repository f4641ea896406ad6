package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/config"
	"dramahub/internal/http-api/dto"
	"dramahub/internal/http-api/models"
	"dramahub/internal/http-api/repository"
)

// ErrDramaUnavailable is the terminal error for a title that is neither
// cached nor reachable upstream.
var ErrDramaUnavailable = errors.New("drama not cached and upstream unavailable")

// DramaStore is the cache-store surface the orchestrator depends on.
type DramaStore interface {
	GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Drama, error)
	IsFresh(ctx context.Context, tmdbID int64, maxAgeDays int) (bool, error)
	UpsertDrama(ctx context.Context, d *models.Drama) (repository.UpsertOutcome, error)
	ReplaceCast(ctx context.Context, dramaID int64, rows []models.CastMember) error
	ReplaceVideos(ctx context.Context, dramaID int64, rows []models.Video) error
	ReplaceImages(ctx context.Context, dramaID int64, rows []models.Image) error
	ReplaceSeasons(ctx context.Context, dramaID int64, rows []models.Season) error
	ListPopular(ctx context.Context, limit int) ([]models.Drama, error)
	ListStale(ctx context.Context, maxAgeDays, limit int) ([]models.Drama, error)
	RetentionSweep(ctx context.Context, olderThanDays int) (int64, error)
}

// Catalog is the upstream TMDB surface the orchestrator depends on.
type Catalog interface {
	GetDramaDetail(ctx context.Context, id int64, language string) (*tmdb.DramaDetails, error)
	GetCredits(ctx context.Context, id int64, language string) (*tmdb.CreditsResponse, error)
	GetVideos(ctx context.Context, id int64, language string) (*tmdb.VideosResponse, error)
	GetImages(ctx context.Context, id int64) (*tmdb.ImagesResponse, error)
	GetSeasonDetail(ctx context.Context, id int64, seasonNumber int, language string) (*tmdb.SeasonDetails, error)
	SearchDramas(ctx context.Context, query string, page int, language string) (*tmdb.PagedResults, error)
	GetPopular(ctx context.Context, page int, language string) (*tmdb.PagedResults, error)
	GetTrending(ctx context.Context, language string) (*tmdb.PagedResults, error)
	GetWatchProviders(ctx context.Context, id int64) (*tmdb.WatchProvidersResponse, error)
}

// HotCache is the optional short-TTL response cache for live endpoints.
type HotCache interface {
	GetJSON(ctx context.Context, key string, target interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

type DramaService interface {
	GetByTMDBID(ctx context.Context, tmdbID int64, forceRefresh bool, language string) (*dto.DramaDetailResponse, error)
	Search(ctx context.Context, query string, page int) (*dto.DramaListResponse, error)
	GetPopular(ctx context.Context, page int) (*dto.DramaListResponse, error)
	GetTrending(ctx context.Context) (*dto.DramaListResponse, error)
	GetWatchProviders(ctx context.Context, tmdbID int64) (*dto.ProviderListResponse, error)
	RefreshStale(ctx context.Context) error
	SweepRetention(ctx context.Context) (int64, error)
}

type dramaService struct {
	store    DramaStore
	catalog  Catalog
	hotCache HotCache
	notifier *Notifier
	cfg      *config.Config

	// collapses concurrent refreshes of the same title into one flight
	refreshGroup singleflight.Group
}

func NewDramaService(store DramaStore, catalog Catalog, hotCache HotCache, notifier *Notifier, cfg *config.Config) DramaService {
	return &dramaService{
		store:    store,
		catalog:  catalog,
		hotCache: hotCache,
		notifier: notifier,
		cfg:      cfg,
	}
}

// GetByTMDBID answers "get title T" with the freshness/fallback policy:
// cache hit when fresh, refresh when stale or missing, stale fallback when
// upstream fails, terminal error only when there is nothing to serve.
func (s *dramaService) GetByTMDBID(ctx context.Context, tmdbID int64, forceRefresh bool, language string) (*dto.DramaDetailResponse, error) {
	if language != "" && language != s.cfg.PrimaryLanguage {
		// Localized text is not modeled by the cache schema; these requests
		// go straight upstream and never touch the store.
		return s.fetchDirect(ctx, tmdbID, language)
	}

	if forceRefresh {
		return s.refresh(ctx, tmdbID)
	}

	cached, err := s.store.GetByTMDBID(ctx, tmdbID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[Orchestrator] cache read failed for tmdb_id=%d, treating as miss: %v", tmdbID, err)
	}
	if cached == nil {
		return s.refresh(ctx, tmdbID)
	}

	fresh, err := s.store.IsFresh(ctx, tmdbID, s.cfg.CacheMaxAgeDays)
	if err != nil {
		log.Printf("[Orchestrator] freshness check failed for tmdb_id=%d, treating as stale: %v", tmdbID, err)
	}
	if fresh {
		if len(cached.Images) == 0 {
			if healed := s.healImages(ctx, cached); healed != nil {
				cached = healed
			}
		}
		resp := dto.FromModelToDetailResponse(*cached)
		resp.Source = dto.SourceCacheHit
		return &resp, nil
	}

	return s.refresh(ctx, tmdbID)
}

// refresh funnels concurrent refreshes of the same id through a single
// flight so two callers cannot interleave sub-entity generations.
func (s *dramaService) refresh(ctx context.Context, tmdbID int64) (*dto.DramaDetailResponse, error) {
	v, err, _ := s.refreshGroup.Do(strconv.FormatInt(tmdbID, 10), func() (interface{}, error) {
		return s.doRefresh(ctx, tmdbID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.DramaDetailResponse), nil
}

func (s *dramaService) doRefresh(ctx context.Context, tmdbID int64) (*dto.DramaDetailResponse, error) {
	// A refresh benefits future callers even if the triggering caller gives
	// up, so its writes are never cancelled mid-flight.
	ctx = context.WithoutCancel(ctx)

	prior, err := s.store.GetByTMDBID(ctx, tmdbID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[Orchestrator] prior-row read failed for tmdb_id=%d: %v", tmdbID, err)
		prior = nil
	}

	detail, err := s.catalog.GetDramaDetail(ctx, tmdbID, s.cfg.PrimaryLanguage)
	if err != nil {
		if prior != nil {
			log.Printf("[Orchestrator] upstream fetch failed for tmdb_id=%d, serving stale cache: %v", tmdbID, err)
			resp := dto.FromModelToDetailResponse(*prior)
			resp.Source = dto.SourceCacheAfterError
			return &resp, nil
		}
		return nil, fmt.Errorf("%w: fetch tmdb_id=%d: %v", ErrDramaUnavailable, tmdbID, err)
	}

	row := dto.FromTMDBDetail(*detail)
	outcome, err := s.store.UpsertDrama(ctx, &row)
	if err != nil {
		if prior != nil {
			log.Printf("[Orchestrator] save failed for tmdb_id=%d, serving stale cache: %v", tmdbID, err)
			resp := dto.FromModelToDetailResponse(*prior)
			resp.Source = dto.SourceCacheAfterError
			return &resp, nil
		}
		return nil, fmt.Errorf("save drama tmdb_id=%d: %w", tmdbID, err)
	}
	log.Printf("[Orchestrator] upserted drama tmdb_id=%d via %s path (id=%d)", tmdbID, outcome.Path, outcome.ID)

	// Cast, videos and images are fetched concurrently; each may fail on its
	// own without aborting the siblings. Seasons come from the detail
	// response itself.
	sub := s.fetchSubEntities(ctx, tmdbID, s.cfg.PrimaryLanguage)
	if sub.credits != nil {
		s.populateCast(ctx, outcome.ID, *sub.credits)
	}
	if sub.videos != nil {
		s.populateVideos(ctx, outcome.ID, *sub.videos)
	}
	if sub.images != nil {
		s.populateImages(ctx, outcome.ID, *sub.images)
	}
	s.populateSeasons(ctx, outcome.ID, tmdbID, detail.Seasons)

	stored, err := s.store.GetByTMDBID(ctx, tmdbID)
	if err != nil {
		// The upsert landed but the re-read did not; answer from the mapped
		// row rather than failing a request whose data is already saved.
		log.Printf("[Orchestrator] re-read failed for tmdb_id=%d: %v", tmdbID, err)
		stored = &row
		stored.ID = outcome.ID
	}

	resp := dto.FromModelToDetailResponse(*stored)
	if prior != nil {
		resp.Source = dto.SourceStaleRefreshed
	} else {
		resp.Source = dto.SourceMissSaved
		s.notifier.NotifyNewDrama(stored.ID, stored.TMDBID, stored.Name)
	}
	return &resp, nil
}

// healImages fixes the common case of a fresh cache row whose images never
// got populated: one opportunistic images fetch, then a re-read. Failures are
// swallowed; the caller still has the original row to serve.
func (s *dramaService) healImages(ctx context.Context, cached *models.Drama) *models.Drama {
	images, err := s.catalog.GetImages(ctx, cached.TMDBID)
	if err != nil {
		log.Printf("[Orchestrator] image self-heal fetch failed for tmdb_id=%d: %v", cached.TMDBID, err)
		return nil
	}
	s.populateImages(ctx, cached.ID, *images)

	reread, err := s.store.GetByTMDBID(ctx, cached.TMDBID)
	if err != nil {
		log.Printf("[Orchestrator] image self-heal re-read failed for tmdb_id=%d: %v", cached.TMDBID, err)
		return nil
	}
	return reread
}

// fetchDirect serves a non-primary-locale request straight from upstream,
// shaping the response without any cache interaction.
func (s *dramaService) fetchDirect(ctx context.Context, tmdbID int64, language string) (*dto.DramaDetailResponse, error) {
	detail, err := s.catalog.GetDramaDetail(ctx, tmdbID, language)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch tmdb_id=%d: %v", ErrDramaUnavailable, tmdbID, err)
	}

	sub := s.fetchSubEntities(ctx, tmdbID, language)
	resp := dto.FromTMDBToDetailResponse(*detail, sub.credits, sub.videos, sub.images)
	resp.Source = dto.SourceUpstreamDirect
	return &resp, nil
}

// subEntities is a settled-results collection: each field is nil when its
// fetch failed, and a failure never reaches the join point as an error.
type subEntities struct {
	credits *tmdb.CreditsResponse
	videos  *tmdb.VideosResponse
	images  *tmdb.ImagesResponse
}

func (s *dramaService) fetchSubEntities(ctx context.Context, tmdbID int64, language string) subEntities {
	var sub subEntities
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		credits, err := s.catalog.GetCredits(ctx, tmdbID, language)
		if err != nil {
			log.Printf("[Orchestrator] credits fetch failed for tmdb_id=%d: %v", tmdbID, err)
			return
		}
		sub.credits = credits
	}()

	go func() {
		defer wg.Done()
		videos, err := s.catalog.GetVideos(ctx, tmdbID, language)
		if err != nil {
			log.Printf("[Orchestrator] videos fetch failed for tmdb_id=%d: %v", tmdbID, err)
			return
		}
		sub.videos = videos
	}()

	go func() {
		defer wg.Done()
		images, err := s.catalog.GetImages(ctx, tmdbID)
		if err != nil {
			log.Printf("[Orchestrator] images fetch failed for tmdb_id=%d: %v", tmdbID, err)
			return
		}
		sub.images = images
	}()

	wg.Wait()
	return sub
}

// RefreshStale re-runs the refresh path for the most popular cached titles
// that have outlived the max-age threshold. Called by the scheduler.
func (s *dramaService) RefreshStale(ctx context.Context) error {
	stale, err := s.store.ListStale(ctx, s.cfg.CacheMaxAgeDays, s.cfg.PopulateTopN)
	if err != nil {
		return fmt.Errorf("list stale dramas: %w", err)
	}
	if len(stale) == 0 {
		log.Println("[Orchestrator] no stale dramas to refresh")
		return nil
	}

	log.Printf("[Orchestrator] refreshing %d stale dramas", len(stale))
	for _, d := range stale {
		if _, err := s.refresh(ctx, d.TMDBID); err != nil {
			log.Printf("[Orchestrator] scheduled refresh of tmdb_id=%d failed: %v", d.TMDBID, err)
		}
	}
	return nil
}

// SweepRetention deletes cached titles untouched for the configured
// retention window. Called by the scheduler.
func (s *dramaService) SweepRetention(ctx context.Context) (int64, error) {
	return s.store.RetentionSweep(ctx, s.cfg.RetentionSweepAge)
}
