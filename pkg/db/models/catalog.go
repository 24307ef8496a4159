package models

import "time"

// Category groups products by merchandise kind (jerseys, balls, shoes...).
type Category struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Sport is the top of the catalog hierarchy.
type Sport struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Tournament belongs to a sport (e.g. Premier League under football).
type Tournament struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	SportID   uint      `gorm:"column:sport_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Sport     *Sport    `gorm:"foreignKey:SportID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Team belongs to a tournament.
type Team struct {
	ID           uint        `gorm:"column:id;primaryKey"`
	TournamentID uint        `gorm:"column:tournament_id;not null;index"`
	Name         string      `gorm:"column:name;not null"`
	LogoURL      *string     `gorm:"column:logo_url"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// Supplier is the sourcing partner for a product.
type Supplier struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	Address   *string   `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
