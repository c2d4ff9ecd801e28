package data

import (
	"time"
)

// Movie represents the movies table
type Movie struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"uniqueIndex;not null;size:250"`
	Year        string   `gorm:"not null;size:250"`
	Description string   `gorm:"not null;size:500"`
	Rating      *float64 `gorm:"index:idx_movies_rating"`
	Ranking     *int
	Review      *string `gorm:"size:500"`
	ImgURL      string  `gorm:"column:img_url;not null;size:500"`
	Status      string  `gorm:"not null;size:32;default:pending_rating;index:idx_movies_status"`
	TMDbID      int     `gorm:"column:tmdb_id;index:idx_movies_tmdb_id"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}
