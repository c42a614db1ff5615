package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/pkg/config"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/redis"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PIM-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the credential store answers a ping.
func HealthReady(cfg *config.Config, store redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PIM-Env", cfg.App.Env)
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
