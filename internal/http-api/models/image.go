package models

// Image type tags and the per-type cap a drama may hold.
const (
	ImageTypeBackdrop = "backdrop"
	ImageTypePoster   = "poster"
	ImageTypeLogo     = "logo"

	ImagesPerTypeCap = 20
)

type Image struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DramaID     int64   `json:"drama_id" gorm:"index;not null"`
	FilePath    string  `json:"file_path" gorm:"not null"`
	Type        string  `json:"type" gorm:"not null"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteCount   int     `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	Language    *string `json:"language,omitempty"`
}

func (Image) TableName() string {
	return "drama_images"
}
