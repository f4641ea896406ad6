package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dramahub/internal/config"
	"dramahub/internal/http-api/models"
)

// Connect opens the Postgres database through the pgx driver, runs schema
// migration and installs the SQL helper functions the repository relies on.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm session: %w", err)
	}

	if err := migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Println("[Database] connected and migrated")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Drama{},
		&models.CastMember{},
		&models.Video{},
		&models.Image{},
		&models.Season{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, fn := range []string{freshnessFunc, upsertFunc} {
		if err := db.Exec(fn).Error; err != nil {
			// Helper functions are an optimization; the repository falls
			// back to inline SQL when they are missing.
			log.Printf("[Database] warning: install SQL function failed: %v", err)
		}
	}
	return nil
}

// drama_is_fresh keeps the staleness comparison next to the data so the
// threshold is evaluated against the database clock, not the app's.
const freshnessFunc = `
CREATE OR REPLACE FUNCTION drama_is_fresh(p_tmdb_id bigint, p_max_age_days int)
RETURNS boolean AS $$
  SELECT EXISTS (
    SELECT 1 FROM dramas
    WHERE tmdb_id = p_tmdb_id
      AND last_update >= now() - make_interval(days => p_max_age_days)
  );
$$ LANGUAGE sql STABLE;
`

// upsert_drama inserts or updates a title row from a JSON payload in a
// single statement and returns the row ID.
const upsertFunc = `
CREATE OR REPLACE FUNCTION upsert_drama(payload jsonb)
RETURNS bigint AS $$
DECLARE
  result_id bigint;
BEGIN
  INSERT INTO dramas (
    tmdb_id, name, original_name, overview, poster_path, backdrop_path,
    first_air_date, last_air_date, year, vote_average, vote_count,
    popularity, status, episode_run_time, original_language, homepage,
    tagline, genre_ids, origin_country, last_update, created_at
  )
  VALUES (
    (payload->>'tmdb_id')::bigint,
    payload->>'name',
    payload->>'original_name',
    payload->>'overview',
    payload->>'poster_path',
    payload->>'backdrop_path',
    payload->>'first_air_date',
    payload->>'last_air_date',
    (payload->>'year')::int,
    (payload->>'vote_average')::numeric,
    (payload->>'vote_count')::int,
    (payload->>'popularity')::numeric,
    payload->>'status',
    (payload->>'episode_run_time')::int,
    payload->>'original_language',
    payload->>'homepage',
    payload->>'tagline',
    (payload->'genre_ids')::text,
    (payload->'origin_country')::text,
    COALESCE((payload->>'last_update')::timestamptz, now()),
    now()
  )
  ON CONFLICT (tmdb_id) DO UPDATE SET
    name = EXCLUDED.name,
    original_name = EXCLUDED.original_name,
    overview = EXCLUDED.overview,
    poster_path = EXCLUDED.poster_path,
    backdrop_path = EXCLUDED.backdrop_path,
    first_air_date = EXCLUDED.first_air_date,
    last_air_date = EXCLUDED.last_air_date,
    year = EXCLUDED.year,
    vote_average = EXCLUDED.vote_average,
    vote_count = EXCLUDED.vote_count,
    popularity = EXCLUDED.popularity,
    status = EXCLUDED.status,
    episode_run_time = EXCLUDED.episode_run_time,
    original_language = EXCLUDED.original_language,
    homepage = EXCLUDED.homepage,
    tagline = EXCLUDED.tagline,
    genre_ids = EXCLUDED.genre_ids,
    origin_country = EXCLUDED.origin_country,
    last_update = EXCLUDED.last_update
  RETURNING id INTO result_id;

  RETURN result_id;
END;
$$ LANGUAGE plpgsql;
`
