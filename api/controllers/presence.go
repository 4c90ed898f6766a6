package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/api/middleware"
	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/internal/presence"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// Heartbeat upserts the caller's last-seen timestamp. Clients post it
// periodically while a session is open.
func Heartbeat(repo presence.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}
		role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role context"))
			return
		}

		if err := repo.Heartbeat(r.Context(), userID, role, time.Now()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record heartbeat"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
