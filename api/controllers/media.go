package controllers

import (
	"net/http"
	"strings"

	"github.com/danghoang/sportygear-backend/api/responses"
	"github.com/danghoang/sportygear-backend/internal/products"
	"github.com/danghoang/sportygear-backend/pkg/cloudinary"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/logger"
)

// uploads are product photos; 10 MB is generous for those
const maxUploadBytes = 10 << 20

// UploadProductImage stores an image on Cloudinary and attaches it to the
// product, destroying the previous image if one was set.
func UploadProductImage(media *cloudinary.Client, svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}
		if media == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "media uploads are not configured"))
			return
		}

		productID, err := parseUintParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file field required"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "only image uploads are accepted"))
			return
		}

		asset, err := media.Upload(r.Context(), file, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading image"))
			return
		}

		previous := ""
		if product.ImagePublicID != nil {
			previous = *product.ImagePublicID
		}

		updated, err := svc.SetImage(r.Context(), productID, asset.PublicID, asset.URL)
		if err != nil {
			// the orphaned upload is cleaned up so retries don't leak assets
			_ = media.Destroy(r.Context(), asset.PublicID)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if previous != "" && previous != asset.PublicID {
			if destroyErr := media.Destroy(r.Context(), previous); destroyErr != nil && logg != nil {
				logg.Error(r.Context(), "destroying replaced image", destroyErr)
			}
		}
		responses.WriteSuccess(w, updated)
	}
}

// DeleteProductImage detaches and destroys the product's image.
func DeleteProductImage(media *cloudinary.Client, svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := parseUintParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product.ImagePublicID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product has no image"))
			return
		}

		publicID := *product.ImagePublicID
		updated, err := svc.ClearImage(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := media.Destroy(r.Context(), publicID); err != nil && logg != nil {
			logg.Error(r.Context(), "destroying product image", err)
		}
		responses.WriteSuccess(w, updated)
	}
}
