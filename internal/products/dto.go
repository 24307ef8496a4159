package products

// CreateInput carries the fields needed to create a product.
type CreateInput struct {
	Name        string
	Description *string
	Price       int64
	CategoryID  *uint
	SportID     *uint
	TeamID      *uint
	SupplierID  *uint
	Variants    []VariantInput
}

// UpdateInput carries optional product updates; nil fields are untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *int64
	CategoryID  *uint
	SportID     *uint
	TeamID      *uint
	SupplierID  *uint
}

// VariantInput describes one size/color combination.
type VariantInput struct {
	Size  string
	Color string
	Stock int
}

// ListFilters narrows the public product listing.
type ListFilters struct {
	CategoryID *uint
	SportID    *uint
	TeamID     *uint
	Search     string
}
