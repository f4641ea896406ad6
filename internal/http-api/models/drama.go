package models

import "time"

type Drama struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TMDBID           int64     `json:"tmdb_id" gorm:"uniqueIndex;not null"`
	Name             string    `json:"name" gorm:"not null"`
	OriginalName     *string   `json:"original_name,omitempty"`
	Overview         *string   `json:"overview,omitempty"`
	PosterPath       *string   `json:"poster_path,omitempty"`
	BackdropPath     *string   `json:"backdrop_path,omitempty"`
	FirstAirDate     *string   `json:"first_air_date,omitempty"`
	LastAirDate      *string   `json:"last_air_date,omitempty"`
	Year             *int      `json:"year,omitempty"`
	VoteAverage      *float64  `json:"vote_average,omitempty" gorm:"type:decimal(4,2)"`
	VoteCount        *int      `json:"vote_count,omitempty"`
	Popularity       *float64  `json:"popularity,omitempty"`
	Status           *string   `json:"status,omitempty"`
	GenreIDs         []int64   `json:"genre_ids,omitempty" gorm:"serializer:json"`
	OriginCountry    []string  `json:"origin_country,omitempty" gorm:"serializer:json"`
	EpisodeRunTime   *int      `json:"episode_run_time,omitempty"`
	OriginalLanguage *string   `json:"original_language,omitempty"`
	Homepage         *string   `json:"homepage,omitempty"`
	Tagline          *string   `json:"tagline,omitempty"`
	LastUpdate       time.Time `json:"last_update" gorm:"index;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`

	// associations (owned exclusively, replaced as whole sets on refresh)
	Cast    []CastMember `json:"cast,omitempty" gorm:"foreignKey:DramaID;constraint:OnDelete:CASCADE"`
	Videos  []Video      `json:"videos,omitempty" gorm:"foreignKey:DramaID;constraint:OnDelete:CASCADE"`
	Images  []Image      `json:"images,omitempty" gorm:"foreignKey:DramaID;constraint:OnDelete:CASCADE"`
	Seasons []Season     `json:"seasons,omitempty" gorm:"foreignKey:DramaID;constraint:OnDelete:CASCADE"`
}

func (Drama) TableName() string {
	return "dramas"
}
