package blogs

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

	dsn := "file:blogs_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Blog{}, &models.Banner{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("blogs service: %v", err)
	}
	return svc
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":             "hello-world",
		"  Pre-Season Sale 2026!": "pre-season-sale-2026",
		"Ảo thuật":                "o-thu-t",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBlogLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	blog, err := svc.CreateBlog(ctx, BlogInput{Title: "Pre-Season Sale", Content: "Big discounts", Publish: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if blog.Slug != "pre-season-sale" || blog.PublishedAt == nil {
		t.Fatalf("unexpected blog: %+v", blog)
	}

	// same title collides on the slug
	_, err = svc.CreateBlog(ctx, BlogInput{Title: "Pre-Season Sale", Content: "Again"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}

	got, err := svc.GetBlogBySlug(ctx, "pre-season-sale")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != blog.ID {
		t.Fatalf("got id %d, want %d", got.ID, blog.ID)
	}

	// unpublish hides it from the public list
	if _, err := svc.UpdateBlog(ctx, blog.ID, BlogInput{Publish: false}); err != nil {
		t.Fatalf("update: %v", err)
	}
	published, meta, err := svc.ListPublished(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if meta.Total != 0 || len(published) != 0 {
		t.Fatalf("unpublished blog leaked: %+v", published)
	}

	all, meta, err := svc.ListAll(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if meta.Total != 1 || len(all) != 1 {
		t.Fatalf("admin list should still see it")
	}

	if _, err := svc.UpdateBlog(ctx, 9999, BlogInput{Title: "Ghost"}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}

	if err := svc.DeleteBlog(ctx, blog.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteBlog(ctx, blog.ID); pkgerrors.As(err) == nil {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestBannerOrderingAndActiveFilter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateBanner(ctx, BannerInput{ImageURL: "https://cdn.example.com/b2.jpg", Position: 2, Active: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := svc.CreateBanner(ctx, BannerInput{ImageURL: "https://cdn.example.com/b1.jpg", Position: 1, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	hidden, err := svc.CreateBanner(ctx, BannerInput{ImageURL: "https://cdn.example.com/b3.jpg", Position: 0, Active: false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := svc.ListActiveBanners(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[0].ID != first.ID {
		t.Fatalf("unexpected active banners: %+v", active)
	}

	all, err := svc.ListBanners(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for _, b := range all {
		if b.ID == hidden.ID && b.Active {
			t.Fatal("banner created inactive was persisted active")
		}
	}

	// deactivating via update removes it from the public list
	updated, err := svc.UpdateBanner(ctx, first.ID, BannerInput{ImageURL: "https://cdn.example.com/b1.jpg", Position: 1, Active: false})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Active {
		t.Fatal("banner still active")
	}

	if err := svc.DeleteBanner(ctx, hidden.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.CreateBanner(ctx, BannerInput{ImageURL: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
