package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/api/validators"
	"github.com/ougajs-sys/easyflows-backend/internal/clients"
	"github.com/ougajs-sys/easyflows-backend/internal/importer"
	"github.com/ougajs-sys/easyflows-backend/pkg/db"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

type createClientRequest struct {
	FullName string  `json:"fullName" validate:"required"`
	Phone    string  `json:"phone" validate:"required"`
	City     *string `json:"city"`
	Zone     *string `json:"zone"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	Segment  string  `json:"segment" validate:"omitempty,oneof=new regular vip inactive"`
}

type updateClientRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Phone    *string `json:"phone"`
	City     *string `json:"city"`
	Zone     *string `json:"zone"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	Segment  *string `json:"segment" validate:"omitempty,oneof=new regular vip inactive"`
}

// CreateClient registers a single client from the back office form.
// Phones go through the same normalization as the bulk importer.
func CreateClient(repo clients.Repository, cache *clients.ListCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createClientRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phone, ok := importer.NormalizePhone(req.Phone)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is not a valid Moroccan number"))
			return
		}

		client := &models.Client{
			FullName: req.FullName,
			Phone:    phone,
			City:     req.City,
			Zone:     req.Zone,
			Address:  req.Address,
			Notes:    req.Notes,
			Segment:  enums.ClientSegmentNew,
		}
		if req.Segment != "" {
			client.Segment = enums.ClientSegment(req.Segment)
		}

		created, err := repo.Create(r.Context(), client)
		if err != nil {
			if db.IsUniqueViolation(err, "uq_clients_phone") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a client with this phone already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cache.InvalidateClients(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListClients returns a cursor page of clients filtered by segment or a
// name/phone search term. The unfiltered first page is served from the
// redis cache when one is wired.
func ListClients(repo clients.Repository, cache *clients.ListCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := clients.Filters{
			Segment: validators.ParseQueryString(r, "segment"),
			Search:  validators.ParseQueryString(r, "search"),
		}
		params := pagination.Params{Limit: limit, Cursor: validators.ParseQueryString(r, "cursor")}

		cacheable := cache != nil &&
			filters.Segment == "" && filters.Search == "" &&
			params.Cursor == "" && limit == pagination.DefaultLimit
		if cacheable {
			if list, ok := cache.GetFirstPage(r.Context()); ok {
				responses.WriteSuccess(w, list)
				return
			}
		}

		list, err := repo.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cacheable {
			cache.SetFirstPage(r.Context(), list)
		}
		responses.WriteSuccess(w, list)
	}
}

// GetClient fetches one client by ID.
func GetClient(repo clients.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := repo.FindByID(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "client not found"))
			return
		}
		responses.WriteSuccess(w, client)
	}
}

// UpdateClient applies a partial update to a client profile.
func UpdateClient(repo clients.Repository, cache *clients.ListCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateClientRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := map[string]any{}
		if req.FullName != nil {
			updates["full_name"] = *req.FullName
		}
		if req.Phone != nil {
			phone, ok := importer.NormalizePhone(*req.Phone)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is not a valid Moroccan number"))
				return
			}
			updates["phone"] = phone
		}
		if req.City != nil {
			updates["city"] = *req.City
		}
		if req.Zone != nil {
			updates["zone"] = *req.Zone
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if req.Segment != nil {
			updates["segment"] = *req.Segment
		}
		if len(updates) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update"))
			return
		}

		if err := repo.Update(r.Context(), clientID, updates); err != nil {
			if db.IsUniqueViolation(err, "uq_clients_phone") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a client with this phone already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cache.InvalidateClients(r.Context())

		client, err := repo.FindByID(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "client not found"))
			return
		}
		responses.WriteSuccess(w, client)
	}
}

// DeleteClient removes a client record.
func DeleteClient(repo clients.Repository, cache *clients.ListCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.Delete(r.Context(), clientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cache.InvalidateClients(r.Context())
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
