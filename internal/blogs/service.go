package blogs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// BlogInput carries blog create/update fields.
type BlogInput struct {
	Title   string
	Content string
	Publish bool
}

// BannerInput carries banner create/update fields.
type BannerInput struct {
	ImageURL string
	LinkURL  *string
	Position int
	Active   bool
}

// Service manages editorial content: blog posts and home page banners.
type Service interface {
	CreateBlog(ctx context.Context, input BlogInput) (*models.Blog, error)
	UpdateBlog(ctx context.Context, id uint, input BlogInput) (*models.Blog, error)
	DeleteBlog(ctx context.Context, id uint) error
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	ListPublished(ctx context.Context, params pagination.Params) ([]models.Blog, pagination.Meta, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Blog, pagination.Meta, error)

	CreateBanner(ctx context.Context, input BannerInput) (*models.Banner, error)
	UpdateBanner(ctx context.Context, id uint, input BannerInput) (*models.Banner, error)
	DeleteBanner(ctx context.Context, id uint) error
	ListActiveBanners(ctx context.Context) ([]models.Banner, error)
	ListBanners(ctx context.Context) ([]models.Banner, error)
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService builds the blogs service.
func NewService(gdb *gorm.DB) (Service, error) {
	if gdb == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: gdb, now: time.Now}, nil
}

func (s *service) CreateBlog(ctx context.Context, input BlogInput) (*models.Blog, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}

	blog := &models.Blog{Title: title, Slug: Slugify(title), Content: input.Content}
	if input.Publish {
		now := s.now()
		blog.PublishedAt = &now
	}
	if err := s.db.WithContext(ctx).Create(blog).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already exists", blog.Slug))
		}
		return nil, err
	}
	return blog, nil
}

func (s *service) UpdateBlog(ctx context.Context, id uint, input BlogInput) (*models.Blog, error) {
	blog, err := s.findBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		blog.Title = title
		blog.Slug = Slugify(title)
	}
	if strings.TrimSpace(input.Content) != "" {
		blog.Content = input.Content
	}
	if input.Publish && blog.PublishedAt == nil {
		now := s.now()
		blog.PublishedAt = &now
	}
	if !input.Publish {
		blog.PublishedAt = nil
	}
	if err := s.db.WithContext(ctx).Save(blog).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already exists", blog.Slug))
		}
		return nil, err
	}
	return blog, nil
}

func (s *service) findBlog(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("blog %d not found", id))
		}
		return nil, err
	}
	return &blog, nil
}

func (s *service) DeleteBlog(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Blog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("blog %d not found", id))
	}
	return nil
}

func (s *service) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := s.db.WithContext(ctx).First(&blog, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("blog %q not found", slug))
		}
		return nil, err
	}
	return &blog, nil
}

func (s *service) ListPublished(ctx context.Context, params pagination.Params) ([]models.Blog, pagination.Meta, error) {
	return s.listBlogs(ctx, params, true)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Blog, pagination.Meta, error) {
	return s.listBlogs(ctx, params, false)
}

func (s *service) listBlogs(ctx context.Context, params pagination.Params, publishedOnly bool) ([]models.Blog, pagination.Meta, error) {
	params = pagination.Normalize(params)

	query := s.db.WithContext(ctx).Model(&models.Blog{})
	if publishedOnly {
		query = query.Where("published_at IS NOT NULL AND published_at <= ?", s.now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var blogs []models.Blog
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&blogs).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return blogs, pagination.NewMeta(params, total), nil
}

func (s *service) CreateBanner(ctx context.Context, input BannerInput) (*models.Banner, error) {
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner image url is required")
	}
	banner := &models.Banner{
		ImageURL: input.ImageURL,
		LinkURL:  input.LinkURL,
		Position: input.Position,
		Active:   input.Active,
	}
	if err := s.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *service) UpdateBanner(ctx context.Context, id uint, input BannerInput) (*models.Banner, error) {
	var banner models.Banner
	err := s.db.WithContext(ctx).First(&banner, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("banner %d not found", id))
		}
		return nil, err
	}
	if strings.TrimSpace(input.ImageURL) != "" {
		banner.ImageURL = input.ImageURL
	}
	if input.LinkURL != nil {
		banner.LinkURL = input.LinkURL
	}
	banner.Position = input.Position
	banner.Active = input.Active
	if err := s.db.WithContext(ctx).Save(&banner).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (s *service) DeleteBanner(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Banner{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("banner %d not found", id))
	}
	return nil
}

func (s *service) ListActiveBanners(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, id ASC").
		Find(&banners).Error
	return banners, err
}

func (s *service) ListBanners(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.WithContext(ctx).Order("position ASC, id ASC").Find(&banners).Error
	return banners, err
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses runs of non-alphanumerics
// into single dashes.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
