package controllers

import (
	"net/http"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/internal/orders"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// DashboardStats returns order counts and amounts grouped by status.
func DashboardStats(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := repo.CountByStatus(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"byStatus": counts})
	}
}
