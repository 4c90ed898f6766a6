package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ougajs-sys/easyflows-backend/api/middleware"
	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/api/validators"
	"github.com/ougajs-sys/easyflows-backend/internal/orders"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

type createOrderRequest struct {
	ClientID    *string `json:"clientId" validate:"omitempty,uuid"`
	ClientName  string  `json:"clientName" validate:"required"`
	ClientPhone string  `json:"clientPhone" validate:"required"`
	City        *string `json:"city"`
	Zone        *string `json:"zone"`
	Address     *string `json:"address"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int     `json:"quantity" validate:"omitempty,min=1"`
	TotalAmount string  `json:"totalAmount" validate:"required"`
	Source      string  `json:"source" validate:"omitempty,oneof=manual import api"`
	Notes       *string `json:"notes"`
}

type changeOrderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

type assignOrderRequest struct {
	AgentID string `json:"agentId" validate:"required,uuid"`
}

// CreateOrder registers a new order from the manual entry form or an
// external integration.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.TotalAmount)
		if err != nil || amount.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "totalAmount must be a non-negative decimal"))
			return
		}

		input := orders.CreateOrderInput{
			ClientName:  req.ClientName,
			ClientPhone: req.ClientPhone,
			City:        req.City,
			Zone:        req.Zone,
			Address:     req.Address,
			ProductName: req.ProductName,
			Quantity:    req.Quantity,
			TotalAmount: amount,
			Source:      req.Source,
			Notes:       req.Notes,
		}
		if req.ClientID != nil {
			clientID, err := uuid.Parse(*req.ClientID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid clientId"))
				return
			}
			input.ClientID = &clientID
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns a cursor page of orders, optionally filtered by
// status, assignee, or the unassigned flag.
func ListOrders(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := orders.Filters{}
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = status
		}
		if raw := validators.ParseQueryString(r, "assigneeId"); raw != "" {
			assigneeID, err := validators.ParsePathUUID(raw, "assigneeId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.AssigneeID = &assigneeID
		}
		filters.Unassigned = validators.ParseQueryString(r, "unassigned") == "true"

		params := pagination.Params{Limit: limit, Cursor: validators.ParseQueryString(r, "cursor")}
		list, err := repo.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder fetches one order by ID.
func GetOrder(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "order not found"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ChangeOrderStatus applies a status transition on behalf of the
// authenticated user.
func ChangeOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req changeOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		order, err := svc.ChangeStatus(r.Context(), orders.ChangeStatusInput{
			OrderID:     orderID,
			Target:      req.Status,
			ActorUserID: actorID,
			ActorRole:   middleware.RoleFromContext(r.Context()),
			Notes:       req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AssignOrder lets a supervisor hand an order to a specific call agent.
func AssignOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := uuid.Parse(req.AgentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid agentId"))
			return
		}

		actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		if err := svc.Assign(r.Context(), orders.AssignInput{
			OrderID:     orderID,
			AgentID:     agentID,
			ActorUserID: actorID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "assigned"})
	}
}
