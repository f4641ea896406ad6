package models

// Allowed video type tags. Anything else from upstream is dropped before insert.
const (
	VideoTypeTrailer = "Trailer"
	VideoTypeTeaser  = "Teaser"
)

type Video struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DramaID     int64   `json:"drama_id" gorm:"index;not null"`
	TMDBVideoID string  `json:"tmdb_video_id" gorm:"not null"`
	Key         string  `json:"key" gorm:"not null"`
	Site        string  `json:"site"`
	Type        string  `json:"type"`
	Name        *string `json:"name,omitempty"`
	Size        *int    `json:"size,omitempty"`
	Official    bool    `json:"official"`
	PublishedAt *string `json:"published_at,omitempty"`
}

func (Video) TableName() string {
	return "drama_videos"
}
