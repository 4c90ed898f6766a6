package controllers

import (
	"net/http"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EasyFlows-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the database before reporting readiness.
func HealthReady(cfg *config.Config, database *db.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EasyFlows-Env", cfg.App.Env)
		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
