package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/logger"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Client uploads and removes storefront images on Cloudinary.
type Client struct {
	api    uploadAPI
	folder string
	logg   *logger.Logger
}

// Asset is the stored image reference persisted alongside products and blogs.
type Asset struct {
	PublicID string
	URL      string
}

// New constructs a Cloudinary client. Returns nil when credentials are absent;
// callers treat a nil Client as media uploads being disabled.
func New(cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, nil
	}
	sdk, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary: %w", err)
	}
	return &Client{
		api:    &sdk.Upload,
		folder: cfg.Folder,
		logg:   logg,
	}, nil
}

// Upload stores the image under the configured folder and returns its reference.
func (c *Client) Upload(ctx context.Context, file io.Reader, publicID string) (*Asset, error) {
	if c == nil {
		return nil, errors.New("media uploads are not configured")
	}
	if file == nil {
		return nil, errors.New("file is required")
	}

	result, err := c.api.Upload(ctx, file, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: strings.TrimSpace(publicID),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("uploading image: %s", result.Error.Message)
	}

	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "public_id", result.PublicID), "image uploaded")
	}
	return &Asset{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
	}, nil
}

// Destroy removes a previously uploaded image. Unknown ids are treated as already gone.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c == nil {
		return nil
	}
	if strings.TrimSpace(publicID) == "" {
		return nil
	}

	result, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroying image: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroying image: %s", result.Result)
	}
	return nil
}
