package models

import "time"

// Blog is an editorial post shown on the storefront.
type Blog struct {
	ID            uint       `gorm:"column:id;primaryKey"`
	Title         string     `gorm:"column:title;not null"`
	Slug          string     `gorm:"column:slug;uniqueIndex;not null"`
	Content       string     `gorm:"column:content;not null"`
	CoverPublicID *string    `gorm:"column:cover_public_id"`
	CoverURL      *string    `gorm:"column:cover_url"`
	PublishedAt   *time.Time `gorm:"column:published_at;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Banner is a promotional image slot on the storefront home page.
type Banner struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	LinkURL   *string   `gorm:"column:link_url"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
