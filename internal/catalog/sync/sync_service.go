package sync

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/service"
)

// Lister is the slice of the upstream client the sync needs: paged popular
// results to decide what to populate.
type Lister interface {
	GetPopular(ctx context.Context, page int, language string) (*tmdb.PagedResults, error)
}

// SyncService bulk-populates the cache with the most popular series. Each
// title runs through the ordinary forced-refresh path, so the title row and
// all sub-entity sets land exactly as they would on a cache miss.
type SyncService struct {
	catalog     Lister
	dramas      service.DramaService
	language    string
	pages       int
	workerCount int
}

type Config struct {
	Language    string
	Pages       int // pages of 20 popular titles to populate
	WorkerCount int
}

func NewSyncService(cfg Config, catalog Lister, dramas service.DramaService) *SyncService {
	if cfg.Pages <= 0 {
		cfg.Pages = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	return &SyncService{
		catalog:     catalog,
		dramas:      dramas,
		language:    cfg.Language,
		pages:       cfg.Pages,
		workerCount: cfg.WorkerCount,
	}
}

// Run walks the popular pages and refreshes every title through the worker
// pool. It returns how many titles were populated successfully.
func (s *SyncService) Run(ctx context.Context) (int, error) {
	pool := NewWorkerPool(s.workerCount)
	pool.Start()

	var queued, saved atomic.Int64

	for page := 1; page <= s.pages; page++ {
		results, err := s.catalog.GetPopular(ctx, page, s.language)
		if err != nil {
			if page == 1 {
				pool.Shutdown()
				return 0, fmt.Errorf("fetch popular page %d: %w", page, err)
			}
			log.Printf("[Sync] fetch popular page %d failed, stopping pagination: %v", page, err)
			break
		}

		for _, doc := range results.Results {
			tmdbID := doc.ID
			queued.Add(1)
			pool.Submit(func(taskCtx context.Context) error {
				if _, err := s.dramas.GetByTMDBID(taskCtx, tmdbID, true, ""); err != nil {
					return fmt.Errorf("populate tmdb_id=%d: %w", tmdbID, err)
				}
				saved.Add(1)
				return nil
			})
		}

		if page >= results.TotalPages {
			break
		}
	}

	pool.Wait()
	log.Printf("[Sync] populated %d/%d titles", saved.Load(), queued.Load())
	return int(saved.Load()), nil
}
