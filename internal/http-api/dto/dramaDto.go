package dto

import (
	"time"

	"dramahub/internal/http-api/models"
)

// Source tags describing where a detail response came from.
const (
	SourceCacheHit        = "cache-hit"
	SourceStaleRefreshed  = "stale-refreshed"
	SourceMissSaved       = "miss-saved"
	SourceCacheAfterError = "cache-after-error"
	SourceUpstreamDirect  = "upstream-direct"
)

// DramaDetailResponse is the externally visible nested shape rebuilt from the
// flat cache rows.
type DramaDetailResponse struct {
	ID               int64     `json:"id"`
	TMDBID           int64     `json:"tmdb_id"`
	Name             string    `json:"name"`
	OriginalName     *string   `json:"original_name,omitempty"`
	Overview         *string   `json:"overview,omitempty"`
	PosterPath       *string   `json:"poster_path,omitempty"`
	BackdropPath     *string   `json:"backdrop_path,omitempty"`
	FirstAirDate     *string   `json:"first_air_date,omitempty"`
	LastAirDate      *string   `json:"last_air_date,omitempty"`
	Year             *int      `json:"year,omitempty"`
	VoteAverage      *float64  `json:"vote_average,omitempty"`
	VoteCount        *int      `json:"vote_count,omitempty"`
	Popularity       *float64  `json:"popularity,omitempty"`
	Status           *string   `json:"status,omitempty"`
	GenreIDs         []int64   `json:"genre_ids"`
	OriginCountry    []string  `json:"origin_country"`
	EpisodeRunTime   *int      `json:"episode_run_time,omitempty"`
	OriginalLanguage *string   `json:"original_language,omitempty"`
	Homepage         *string   `json:"homepage,omitempty"`
	Tagline          *string   `json:"tagline,omitempty"`
	LastUpdate       time.Time `json:"last_update"`

	Cast    []CastResponse   `json:"cast"`
	Videos  VideoList        `json:"videos"`
	Images  ImageBuckets     `json:"images"`
	Seasons []SeasonResponse `json:"seasons"`

	Source string `json:"source"`
}

type CastResponse struct {
	PersonID           int64   `json:"id"`
	Name               string  `json:"name"`
	Character          *string `json:"character,omitempty"`
	ProfilePath        *string `json:"profile_path,omitempty"`
	Order              int     `json:"order"`
	KnownForDepartment *string `json:"known_for_department,omitempty"`
}

type VideoList struct {
	Results []VideoResponse `json:"results"`
}

type VideoResponse struct {
	TMDBVideoID string  `json:"id"`
	Key         string  `json:"key"`
	Site        string  `json:"site"`
	Type        string  `json:"type"`
	Name        *string `json:"name,omitempty"`
	Size        *int    `json:"size,omitempty"`
	Official    bool    `json:"official"`
	PublishedAt *string `json:"published_at,omitempty"`
}

type ImageBuckets struct {
	Backdrops []ImageResponse `json:"backdrops"`
	Posters   []ImageResponse `json:"posters"`
	Logos     []ImageResponse `json:"logos"`
}

type ImageResponse struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteCount   int     `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	Language    *string `json:"iso_639_1,omitempty"`
}

type SeasonResponse struct {
	TMDBSeasonID int64   `json:"id"`
	SeasonNumber int     `json:"season_number"`
	Name         *string `json:"name,omitempty"`
	Overview     *string `json:"overview,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
	AirDate      *string `json:"air_date,omitempty"`
	EpisodeCount *int    `json:"episode_count,omitempty"`
}

// DramaBasicResponse carries only the fields list endpoints need.
type DramaBasicResponse struct {
	ID           int64    `json:"id,omitempty"`
	TMDBID       int64    `json:"tmdb_id"`
	Name         string   `json:"name"`
	PosterPath   *string  `json:"poster_path,omitempty"`
	BackdropPath *string  `json:"backdrop_path,omitempty"`
	FirstAirDate *string  `json:"first_air_date,omitempty"`
	Year         *int     `json:"year,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
	Popularity   *float64 `json:"popularity,omitempty"`
	Overview     *string  `json:"overview,omitempty"`
}

// DramaListResponse is the shared paged list shape for search, popular and
// trending.
type DramaListResponse struct {
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages,omitempty"`
	TotalResults int                  `json:"total_results,omitempty"`
	Results      []DramaBasicResponse `json:"results"`
	Source       string               `json:"source"`
}

// Provider merge response: per-country lists flattened into country-agnostic
// arrays, deduplicated by provider id.
type ProviderListResponse struct {
	TMDBID   int64              `json:"tmdb_id"`
	Flatrate []ProviderResponse `json:"flatrate"`
	Rent     []ProviderResponse `json:"rent"`
	Buy      []ProviderResponse `json:"buy"`
}

type ProviderResponse struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     *string `json:"logo_path,omitempty"`
	Link         string `json:"link,omitempty"`
	Country      string `json:"country,omitempty"`
}

// FromModelToDetailResponse rebuilds the nested API shape from a drama row and
// its preloaded sub-entity rows.
func FromModelToDetailResponse(d models.Drama) DramaDetailResponse {
	resp := DramaDetailResponse{
		ID:               d.ID,
		TMDBID:           d.TMDBID,
		Name:             d.Name,
		OriginalName:     d.OriginalName,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		FirstAirDate:     d.FirstAirDate,
		LastAirDate:      d.LastAirDate,
		Year:             d.Year,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		Status:           d.Status,
		GenreIDs:         d.GenreIDs,
		OriginCountry:    d.OriginCountry,
		EpisodeRunTime:   d.EpisodeRunTime,
		OriginalLanguage: d.OriginalLanguage,
		Homepage:         d.Homepage,
		Tagline:          d.Tagline,
		LastUpdate:       d.LastUpdate,
		Cast:             make([]CastResponse, 0, len(d.Cast)),
		Videos:           VideoList{Results: make([]VideoResponse, 0, len(d.Videos))},
		Seasons:          make([]SeasonResponse, 0, len(d.Seasons)),
	}
	if resp.GenreIDs == nil {
		resp.GenreIDs = []int64{}
	}
	if resp.OriginCountry == nil {
		resp.OriginCountry = []string{}
	}

	for _, c := range d.Cast {
		resp.Cast = append(resp.Cast, CastResponse{
			PersonID:           c.PersonID,
			Name:               c.Name,
			Character:          c.Character,
			ProfilePath:        c.ProfilePath,
			Order:              c.CastOrder,
			KnownForDepartment: c.KnownForDepartment,
		})
	}

	for _, v := range d.Videos {
		resp.Videos.Results = append(resp.Videos.Results, VideoResponse{
			TMDBVideoID: v.TMDBVideoID,
			Key:         v.Key,
			Site:        v.Site,
			Type:        v.Type,
			Name:        v.Name,
			Size:        v.Size,
			Official:    v.Official,
			PublishedAt: v.PublishedAt,
		})
	}

	resp.Images = bucketImages(d.Images)

	for _, s := range d.Seasons {
		resp.Seasons = append(resp.Seasons, SeasonResponse{
			TMDBSeasonID: s.TMDBSeasonID,
			SeasonNumber: s.SeasonNumber,
			Name:         s.Name,
			Overview:     s.Overview,
			PosterPath:   s.PosterPath,
			AirDate:      s.AirDate,
			EpisodeCount: s.EpisodeCount,
		})
	}

	return resp
}

// bucketImages splits flat image rows back into the backdrops/posters/logos
// arrays of the upstream shape. Unknown type tags are dropped.
func bucketImages(images []models.Image) ImageBuckets {
	buckets := ImageBuckets{
		Backdrops: []ImageResponse{},
		Posters:   []ImageResponse{},
		Logos:     []ImageResponse{},
	}
	for _, img := range images {
		entry := ImageResponse{
			FilePath:    img.FilePath,
			Width:       img.Width,
			Height:      img.Height,
			AspectRatio: img.AspectRatio,
			VoteCount:   img.VoteCount,
			VoteAverage: img.VoteAverage,
			Language:    img.Language,
		}
		switch img.Type {
		case models.ImageTypeBackdrop:
			buckets.Backdrops = append(buckets.Backdrops, entry)
		case models.ImageTypePoster:
			buckets.Posters = append(buckets.Posters, entry)
		case models.ImageTypeLogo:
			buckets.Logos = append(buckets.Logos, entry)
		}
	}
	return buckets
}

// FromModelToBasicResponse maps a cached row to the list entry shape.
func FromModelToBasicResponse(d models.Drama) DramaBasicResponse {
	return DramaBasicResponse{
		ID:           d.ID,
		TMDBID:       d.TMDBID,
		Name:         d.Name,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		FirstAirDate: d.FirstAirDate,
		Year:         d.Year,
		VoteAverage:  d.VoteAverage,
		Popularity:   d.Popularity,
		Overview:     d.Overview,
	}
}
