package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

func newFixture(t *testing.T) (Service, *models.Variant, uuid.UUID) {
	t.Helper()

	dsn := "file:wishlist_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.Product{}, &models.Variant{}, &models.Wishlist{}, &models.WishlistItem{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	product := &models.Product{Name: "Home Jersey", Price: 50000}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := &models.Variant{ProductID: product.ID, Size: "M", Color: "Red", Stock: 10}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	svc, err := NewService(NewRepository(db), inventory.NewRepository(db))
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	return svc, variant, uuid.New()
}

func TestAddIsIdempotent(t *testing.T) {
	svc, variant, userID := newFixture(t)
	ctx := context.Background()

	list, err := svc.Add(ctx, userID, variant.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}

	// saving the same variant twice keeps a single row
	list, err = svc.Add(ctx, userID, variant.ID)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1 after duplicate add", len(list.Items))
	}
}

func TestAddUnknownVariant(t *testing.T) {
	svc, _, userID := newFixture(t)

	_, err := svc.Add(context.Background(), userID, 999)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRemove(t *testing.T) {
	svc, variant, userID := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, userID, variant.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	list, err := svc.Remove(ctx, userID, variant.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(list.Items))
	}

	_, err = svc.Remove(ctx, userID, variant.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
