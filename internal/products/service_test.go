package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Category{}, &models.Sport{}, &models.Tournament{}, &models.Team{},
		&models.Supplier{}, &models.Product{}, &models.Variant{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db), inventory.NewRepository(db))
	if err != nil {
		t.Fatalf("products service: %v", err)
	}
	return svc, db
}

func TestCreateWithVariants(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{
		Name:  "Home Jersey",
		Price: 50000,
		Variants: []VariantInput{
			{Size: "M", Color: "Red", Stock: 10},
			{Size: "L", Color: "Red", Stock: 5},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(product.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(product.Variants))
	}

	got, err := svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Home Jersey" || len(got.Variants) != 2 {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: " ", Price: 100})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}

	_, err = svc.Create(ctx, CreateInput{Name: "Ball", Price: -1})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}

	_, err = svc.Create(ctx, CreateInput{Name: "Ball", Price: 100, Variants: []VariantInput{{Size: "", Color: "Red"}}})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAddVariantDuplicateConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{Name: "Home Jersey", Price: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddVariant(ctx, product.ID, VariantInput{Size: "M", Color: "Red", Stock: 3}); err != nil {
		t.Fatalf("add variant: %v", err)
	}

	_, err = svc.AddVariant(ctx, product.ID, VariantInput{Size: "M", Color: "Red", Stock: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}

	_, err = svc.AddVariant(ctx, 999, VariantInput{Size: "M", Color: "Red"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateDoesNotTouchStock(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{
		Name:     "Home Jersey",
		Price:    50000,
		Variants: []VariantInput{{Size: "M", Color: "Red", Stock: 10}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := int64(60000)
	if _, err := svc.Update(ctx, product.ID, UpdateInput{Price: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var variant models.Variant
	if err := db.First(&variant, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("variant: %v", err)
	}
	if variant.Stock != 10 {
		t.Fatalf("stock = %d, want 10", variant.Stock)
	}

	got, err := svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 60000 {
		t.Fatalf("price = %d, want 60000", got.Price)
	}
}

func TestRestockGoesThroughLedger(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{
		Name:     "Home Jersey",
		Price:    50000,
		Variants: []VariantInput{{Size: "M", Color: "Red", Stock: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	variant, err := svc.Restock(ctx, product.Variants[0].ID, 8)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if variant.Stock != 10 {
		t.Fatalf("stock = %d, want 10", variant.Stock)
	}
}

func TestListFilters(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	category := &models.Category{Name: "Jerseys"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	if _, err := svc.Create(ctx, CreateInput{Name: "Home Jersey", Price: 50000, CategoryID: &category.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Match Ball", Price: 30000}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, meta, err := svc.List(ctx, pagination.Params{}, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 2 || len(all) != 2 {
		t.Fatalf("total = %d len = %d, want 2/2", meta.Total, len(all))
	}

	filtered, meta, err := svc.List(ctx, pagination.Params{}, ListFilters{CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if meta.Total != 1 || len(filtered) != 1 || filtered[0].Name != "Home Jersey" {
		t.Fatalf("unexpected filtered list: %+v", filtered)
	}

	searched, _, err := svc.List(ctx, pagination.Params{}, ListFilters{Search: "Ball"})
	if err != nil {
		t.Fatalf("list searched: %v", err)
	}
	if len(searched) != 1 || searched[0].Name != "Match Ball" {
		t.Fatalf("unexpected search result: %+v", searched)
	}
}

func TestSetImage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{Name: "Home Jersey", Price: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetImage(ctx, product.ID, "sportygear/jersey-1", "https://res.cloudinary.com/demo/jersey-1.jpg")
	if err != nil {
		t.Fatalf("set image: %v", err)
	}
	if updated.ImagePublicID == nil || *updated.ImagePublicID != "sportygear/jersey-1" {
		t.Fatalf("unexpected image fields: %+v", updated)
	}

	_, err = svc.SetImage(ctx, product.ID, "", "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestClearImage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{Name: "Home Jersey", Price: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetImage(ctx, product.ID, "sportygear/jersey-1", "https://res.cloudinary.com/demo/jersey-1.jpg"); err != nil {
		t.Fatalf("set image: %v", err)
	}

	cleared, err := svc.ClearImage(ctx, product.ID)
	if err != nil {
		t.Fatalf("clear image: %v", err)
	}
	if cleared.ImagePublicID != nil || cleared.ImageURL != nil {
		t.Fatalf("image fields should be nil: %+v", cleared)
	}
}
