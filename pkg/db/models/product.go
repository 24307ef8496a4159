package models

import "time"

// Product is a sellable catalog entry; purchasable units are its Variants.
type Product struct {
	ID            uint      `gorm:"column:id;primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Description   *string   `gorm:"column:description"`
	Price         int64     `gorm:"column:price;not null"`
	CategoryID    *uint     `gorm:"column:category_id;index"`
	SportID       *uint     `gorm:"column:sport_id;index"`
	TeamID        *uint     `gorm:"column:team_id;index"`
	SupplierID    *uint     `gorm:"column:supplier_id;index"`
	ImagePublicID *string   `gorm:"column:image_public_id"`
	ImageURL      *string   `gorm:"column:image_url"`
	Category      *Category `gorm:"foreignKey:CategoryID"`
	Sport         *Sport    `gorm:"foreignKey:SportID"`
	Team          *Team     `gorm:"foreignKey:TeamID"`
	Supplier      *Supplier `gorm:"foreignKey:SupplierID"`
	Variants      []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Variant is a size/color combination with its own stock counter.
// Stock mutates only through the inventory ledger.
type Variant struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:uniq_product_size_color"`
	Size      string    `gorm:"column:size;not null;uniqueIndex:uniq_product_size_color"`
	Color     string    `gorm:"column:color;not null;uniqueIndex:uniq_product_size_color"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
