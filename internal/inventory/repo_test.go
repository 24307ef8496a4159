package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Variant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, stock int) *models.Variant {
	t.Helper()
	product := &models.Product{Name: "Home Jersey", Price: 50000}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := &models.Variant{ProductID: product.ID, Size: "M", Color: "Red", Stock: stock}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant
}

func TestDecrease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 10)
	repo := NewRepository(db)

	if err := repo.Decrease(ctx, variant.ID, 2); err != nil {
		t.Fatalf("decrease: %v", err)
	}

	var reloaded models.Variant
	if err := db.First(&reloaded, variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", reloaded.Stock)
	}
}

func TestDecreaseExhaustsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 3)
	repo := NewRepository(db)

	if err := repo.Decrease(ctx, variant.ID, 3); err != nil {
		t.Fatalf("decrease to zero: %v", err)
	}

	err := repo.Decrease(ctx, variant.ID, 1)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var reloaded models.Variant
	if err := db.First(&reloaded, variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("stock must not go negative, got %d", reloaded.Stock)
	}
}

func TestDecreaseConcurrentLastUnit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 1)
	repo := NewRepository(db)

	// sqlite's shared-cache mode does not tolerate concurrent writers; one
	// connection keeps the race on the guarded UPDATE itself
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Decrease(ctx, variant.ID, 1)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
				t.Fatalf("unexpected error: %v", err)
			}
			insufficient++
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("got %d successes and %d insufficient-stock errors, want exactly 1 of each", ok, insufficient)
	}

	var reloaded models.Variant
	if err := db.First(&reloaded, variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("stock = %d, want 0", reloaded.Stock)
	}
}

func TestDecreaseUnknownVariant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	err := repo.Decrease(context.Background(), 9999, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecreaseInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	variant := seedVariant(t, db, 5)
	repo := NewRepository(db)

	err := repo.Decrease(context.Background(), variant.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRestock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 1)
	repo := NewRepository(db)

	if err := repo.Restock(ctx, variant.ID, 4); err != nil {
		t.Fatalf("restock: %v", err)
	}

	var reloaded models.Variant
	if err := db.First(&reloaded, variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", reloaded.Stock)
	}
}
