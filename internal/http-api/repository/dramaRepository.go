package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"dramahub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no cached row exists for the requested id.
var ErrNotFound = errors.New("drama not found in cache")

// UpsertPath names the tier of the title write path that produced a row id.
type UpsertPath string

const (
	UpsertPathRPC    UpsertPath = "rpc"
	UpsertPathTable  UpsertPath = "table"
	UpsertPathLookup UpsertPath = "lookup"
)

// UpsertOutcome is the tagged result of the three-tier title write path.
type UpsertOutcome struct {
	ID   int64
	Path UpsertPath
}

type DramaRepo struct {
	db *gorm.DB
}

func NewDramaRepo(db *gorm.DB) *DramaRepo {
	return &DramaRepo{db: db}
}

// GetByTMDBID reads a drama and all of its sub-entity rows by upstream id.
func (r *DramaRepo) GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Drama, error) {
	var d models.Drama
	err := r.db.WithContext(ctx).
		Preload("Cast", func(db *gorm.DB) *gorm.DB { return db.Order("cast_order asc") }).
		Preload("Videos").
		Preload("Images").
		Preload("Seasons", func(db *gorm.DB) *gorm.DB { return db.Order("season_number asc") }).
		Where("tmdb_id = ?", tmdbID).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drama by tmdb id: %w", err)
	}
	return &d, nil
}

// IsFresh asks the database whether the cached row is younger than the
// max-age threshold. The check runs server-side so the threshold stays a
// query argument rather than client arithmetic; if the SQL function is not
// deployed, an equivalent inline query covers the drift.
func (r *DramaRepo) IsFresh(ctx context.Context, tmdbID int64, maxAgeDays int) (bool, error) {
	var fresh bool
	err := r.db.WithContext(ctx).
		Raw("SELECT drama_is_fresh(?, ?)", tmdbID, maxAgeDays).
		Scan(&fresh).Error
	if err == nil {
		return fresh, nil
	}

	log.Printf("[CacheStore] drama_is_fresh unavailable, falling back to inline check: %v", err)
	err = r.db.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM dramas WHERE tmdb_id = ? AND last_update > NOW() - make_interval(days => ?))",
			tmdbID, maxAgeDays).
		Scan(&fresh).Error
	if err != nil {
		return false, fmt.Errorf("freshness check: %w", err)
	}
	return fresh, nil
}

// UpsertDrama writes the title row and resolves its internal id through three
// tiers: the upsert_drama SQL function, a direct ON CONFLICT upsert against
// the table, and finally a plain lookup by upstream id. The tiers exist
// because the function and the table can drift between environments; data
// must never be lost to that drift.
func (r *DramaRepo) UpsertDrama(ctx context.Context, d *models.Drama) (UpsertOutcome, error) {
	if d.LastUpdate.IsZero() {
		d.LastUpdate = time.Now().UTC()
	}

	if outcome, err := r.upsertViaRPC(ctx, d); err == nil {
		return outcome, nil
	} else {
		log.Printf("[CacheStore] upsert_drama rpc failed for tmdb_id=%d, trying table upsert: %v", d.TMDBID, err)
	}

	if outcome, err := r.upsertViaTable(ctx, d); err == nil {
		return outcome, nil
	} else {
		log.Printf("[CacheStore] table upsert failed for tmdb_id=%d, trying lookup: %v", d.TMDBID, err)
	}

	var id int64
	err := r.db.WithContext(ctx).
		Model(&models.Drama{}).
		Select("id").
		Where("tmdb_id = ?", d.TMDBID).
		Take(&id).Error
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("all upsert paths failed for tmdb_id=%d: %w", d.TMDBID, err)
	}
	return UpsertOutcome{ID: id, Path: UpsertPathLookup}, nil
}

func (r *DramaRepo) upsertViaRPC(ctx context.Context, d *models.Drama) (UpsertOutcome, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("marshal drama payload: %w", err)
	}

	var id int64
	err = r.db.WithContext(ctx).
		Raw("SELECT upsert_drama(?::jsonb)", string(payload)).
		Scan(&id).Error
	if err != nil {
		return UpsertOutcome{}, err
	}
	if id == 0 {
		return UpsertOutcome{}, errors.New("upsert_drama returned no id")
	}
	return UpsertOutcome{ID: id, Path: UpsertPathRPC}, nil
}

func (r *DramaRepo) upsertViaTable(ctx context.Context, d *models.Drama) (UpsertOutcome, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tmdb_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "original_name", "overview", "poster_path", "backdrop_path",
				"first_air_date", "last_air_date", "year", "vote_average", "vote_count",
				"popularity", "status", "genre_ids", "origin_country", "episode_run_time",
				"original_language", "homepage", "tagline", "last_update",
			}),
		}).
		Create(d).Error
	if err != nil {
		return UpsertOutcome{}, err
	}
	if d.ID == 0 {
		return UpsertOutcome{}, errors.New("table upsert returned no id")
	}
	return UpsertOutcome{ID: d.ID, Path: UpsertPathTable}, nil
}

// ReplaceCast swaps the full cast set for a drama in one transaction.
func (r *DramaRepo) ReplaceCast(ctx context.Context, dramaID int64, rows []models.CastMember) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin replace cast: %w", tx.Error)
	}
	if err := tx.Where("drama_id = ?", dramaID).Delete(&models.CastMember{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete cast: %w", err)
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("insert cast: %w", err)
		}
	}
	return tx.Commit().Error
}

// ReplaceVideos swaps the full video set for a drama in one transaction.
func (r *DramaRepo) ReplaceVideos(ctx context.Context, dramaID int64, rows []models.Video) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin replace videos: %w", tx.Error)
	}
	if err := tx.Where("drama_id = ?", dramaID).Delete(&models.Video{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete videos: %w", err)
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("insert videos: %w", err)
		}
	}
	return tx.Commit().Error
}

// ReplaceImages swaps the full image set for a drama in one transaction.
func (r *DramaRepo) ReplaceImages(ctx context.Context, dramaID int64, rows []models.Image) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin replace images: %w", tx.Error)
	}
	if err := tx.Where("drama_id = ?", dramaID).Delete(&models.Image{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete images: %w", err)
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("insert images: %w", err)
		}
	}
	return tx.Commit().Error
}

// ReplaceSeasons swaps the full season set for a drama in one transaction.
func (r *DramaRepo) ReplaceSeasons(ctx context.Context, dramaID int64, rows []models.Season) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin replace seasons: %w", tx.Error)
	}
	if err := tx.Where("drama_id = ?", dramaID).Delete(&models.Season{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete seasons: %w", err)
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("insert seasons: %w", err)
		}
	}
	return tx.Commit().Error
}

// ListPopular returns the most popular cached dramas, no staleness applied.
func (r *DramaRepo) ListPopular(ctx context.Context, limit int) ([]models.Drama, error) {
	var list []models.Drama
	err := r.db.WithContext(ctx).
		Order("popularity DESC NULLS LAST").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list popular dramas: %w", err)
	}
	return list, nil
}

// ListStale returns the most popular dramas whose rows have outlived the
// max-age threshold, for the background refresh job.
func (r *DramaRepo) ListStale(ctx context.Context, maxAgeDays, limit int) ([]models.Drama, error) {
	var list []models.Drama
	err := r.db.WithContext(ctx).
		Where("last_update < NOW() - make_interval(days => ?)", maxAgeDays).
		Order("popularity DESC NULLS LAST").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list stale dramas: %w", err)
	}
	return list, nil
}

// RetentionSweep deletes dramas untouched for olderThanDays days. Sub-entity
// rows go with them via the cascade constraint. This is the administrative
// path; the cache logic itself never deletes.
func (r *DramaRepo) RetentionSweep(ctx context.Context, olderThanDays int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_update < NOW() - make_interval(days => ?)", olderThanDays).
		Delete(&models.Drama{})
	if result.Error != nil {
		return 0, fmt.Errorf("retention sweep: %w", result.Error)
	}
	return result.RowsAffected, nil
}
