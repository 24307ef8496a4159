package cloudinary

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghoang/sportygear-backend/pkg/config"
)

type stubUploadAPI struct {
	uploadResult  *uploader.UploadResult
	uploadErr     error
	destroyResult *uploader.DestroyResult
	destroyErr    error
	lastUpload    uploader.UploadParams
	lastDestroy   uploader.DestroyParams
}

func (s *stubUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	s.lastUpload = params
	return s.uploadResult, s.uploadErr
}

func (s *stubUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	s.lastDestroy = params
	return s.destroyResult, s.destroyErr
}

func TestNewDisabledWithoutCredentials(t *testing.T) {
	client, err := New(config.CloudinaryConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)

	var nilClient *Client
	require.Error(t, func() error {
		_, err := nilClient.Upload(context.Background(), strings.NewReader("x"), "id")
		return err
	}())
	require.NoError(t, nilClient.Destroy(context.Background(), "id"))
}

func TestNewWithCredentials(t *testing.T) {
	client, err := New(config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		Folder:    "sportygear",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.Equal(t, "sportygear", client.folder)
}

func TestUpload(t *testing.T) {
	stub := &stubUploadAPI{
		uploadResult: &uploader.UploadResult{
			PublicID:  "sportygear/prod-1",
			SecureURL: "https://res.cloudinary.com/demo/image/upload/sportygear/prod-1.jpg",
		},
	}
	client := &Client{api: stub, folder: "sportygear"}

	asset, err := client.Upload(context.Background(), strings.NewReader("image-bytes"), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "sportygear/prod-1", asset.PublicID)
	assert.Contains(t, asset.URL, "prod-1.jpg")
	assert.Equal(t, "sportygear", stub.lastUpload.Folder)
}

func TestUploadSurfacesAPIError(t *testing.T) {
	stub := &stubUploadAPI{
		uploadResult: &uploader.UploadResult{
			Error: api.ErrorResp{Message: "invalid image"},
		},
	}
	client := &Client{api: stub}

	_, err := client.Upload(context.Background(), strings.NewReader("junk"), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image")
}

func TestDestroyTreatsNotFoundAsGone(t *testing.T) {
	stub := &stubUploadAPI{destroyResult: &uploader.DestroyResult{Result: "not found"}}
	client := &Client{api: stub}

	require.NoError(t, client.Destroy(context.Background(), "missing-id"))
	assert.Equal(t, "missing-id", stub.lastDestroy.PublicID)
}
