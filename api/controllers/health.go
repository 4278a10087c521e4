package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/localmarket-hq/localmarket-backend/api/responses"
	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can answer a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalMarket-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the hard dependencies answer within the timeout.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalMarket-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]Pinger{
			"database": db,
			"redis":    cache,
		}
		status := map[string]string{}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			status[name] = "ok"
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
