package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/api/validators"
	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

// TriggerDistribution runs one distribution pass on demand. The time
// window gate still applies; outside it the response carries the
// skipped flag instead of assignments.
func TriggerDistribution(svc *distribution.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Distribute(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListDistributionRuns returns the audit trail of past runs, newest
// first.
func ListDistributionRuns(repo distribution.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: limit, Cursor: validators.ParseQueryString(r, "cursor")}
		list, err := repo.ListRuns(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetDistributionRun fetches one run with its assignment rows.
func GetDistributionRun(repo distribution.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := validators.ParsePathUUID(chi.URLParam(r, "runID"), "runID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		run, err := repo.FindRun(r.Context(), runID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "distribution run not found"))
			return
		}
		responses.WriteSuccess(w, run)
	}
}
