package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

func newService(t *testing.T) Service {
	t.Helper()

	dsn := "file:suppliers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Supplier{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("suppliers service: %v", err)
	}
	return svc
}

func strptr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "  Nike Vietnam  ", Email: strptr("sales@nike.vn")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Nike Vietnam" {
		t.Fatalf("name = %q, want trimmed", created.Name)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email == nil || *got.Email != "sales@nike.vn" {
		t.Fatalf("unexpected supplier: %+v", got)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), Input{Name: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Adidas", Phone: strptr("0281111111")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, Input{Address: strptr("12 Le Loi, HCMC")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Adidas" {
		t.Fatalf("name changed unexpectedly: %q", updated.Name)
	}
	if updated.Phone == nil || *updated.Phone != "0281111111" {
		t.Fatalf("phone changed unexpectedly: %v", updated.Phone)
	}
	if updated.Address == nil || *updated.Address != "12 Le Loi, HCMC" {
		t.Fatalf("address not applied: %v", updated.Address)
	}
}

func TestDeleteMissingSupplier(t *testing.T) {
	svc := newService(t)

	err := svc.Delete(context.Background(), 9999)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListOrdersByName(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Puma", "Adidas", "Nike"} {
		if _, err := svc.Create(ctx, Input{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	items, meta, err := svc.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 3 {
		t.Fatalf("total = %d, want 3", meta.Total)
	}
	if len(items) != 3 || items[0].Name != "Adidas" || items[2].Name != "Puma" {
		t.Fatalf("unexpected ordering: %+v", items)
	}
}
