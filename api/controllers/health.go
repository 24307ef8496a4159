package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/danghoang/sportygear-backend/api/responses"
	"github.com/danghoang/sportygear-backend/pkg/db"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/logger"
	pkgredis "github.com/danghoang/sportygear-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady pings the datastore and redis and aggregates failures so a
// single probe surfaces everything that is down.
func HealthReady(database db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var err error
		checks := map[string]string{}

		if database != nil {
			if pingErr := database.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pingErr)
				checks["database"] = "down"
			} else {
				checks["database"] = "ok"
			}
		}
		if cache != nil {
			if pingErr := cache.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pingErr)
				checks["redis"] = "down"
			} else {
				checks["redis"] = "ok"
			}
		}

		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ok", "checks": checks})
	}
}
