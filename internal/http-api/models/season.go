package models

type Season struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DramaID      int64   `json:"drama_id" gorm:"index;not null"`
	TMDBSeasonID int64   `json:"tmdb_season_id" gorm:"not null"`
	SeasonNumber int     `json:"season_number" gorm:"not null"`
	Name         *string `json:"name,omitempty"`
	Overview     *string `json:"overview,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
	AirDate      *string `json:"air_date,omitempty"`
	EpisodeCount *int    `json:"episode_count,omitempty"`
}

func (Season) TableName() string {
	return "drama_seasons"
}
