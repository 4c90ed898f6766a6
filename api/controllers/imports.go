package controllers

import (
	"net/http"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/api/validators"
	"github.com/ougajs-sys/easyflows-backend/internal/importer"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

type startImportRequest struct {
	Content       string `json:"content" validate:"required"`
	DuplicateMode string `json:"duplicateMode" validate:"required,oneof=ignore update"`
}

// StartImport launches an asynchronous client import. Only one import
// can run per process; concurrent starts are rejected.
func StartImport(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startImportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseDuplicateMode(req.DuplicateMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duplicateMode"))
			return
		}

		if err := svc.Start(r.Context(), req.Content, mode); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, svc.Progress())
	}
}

// ImportProgress returns the live progress snapshot for polling.
func ImportProgress(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Progress())
	}
}

// ImportResult returns the outcome of the most recent finished import.
func ImportResult(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := svc.LastResult()
		if result == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no finished import"))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CancelImport requests cancellation of the running import. The
// in-flight batch finishes before the run stops.
func CancelImport(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Cancel() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "no import in progress"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelling"})
	}
}

// ResetImport clears the last run so the UI returns to the idle state.
func ResetImport(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "idle"})
	}
}
