package models

type CastMember struct {
	ID                 int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DramaID            int64   `json:"drama_id" gorm:"index;not null"`
	PersonID           int64   `json:"person_id" gorm:"not null"`
	Name               string  `json:"name" gorm:"not null"`
	Character          *string `json:"character,omitempty"`
	ProfilePath        *string `json:"profile_path,omitempty"`
	CastOrder          int     `json:"order" gorm:"column:cast_order"`
	KnownForDepartment *string `json:"known_for_department,omitempty"`
}

func (CastMember) TableName() string {
	return "drama_cast"
}
