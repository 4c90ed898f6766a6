package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindUnassignedPending(ctx context.Context) ([]models.Order, error)
	UpdateAssignee(ctx context.Context, orderID, agentID uuid.UUID, assignedAt time.Time) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	NextOrderNumber(ctx context.Context) (int64, error)
}

// Filters narrows order listings.
type Filters struct {
	Status     enums.OrderStatus
	AssigneeID *uuid.UUID
	Unassigned bool
}

// OrderList is one cursor page of orders.
type OrderList struct {
	Items      []models.Order `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

// StatusCount aggregates orders for the supervisor dashboard.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
	Total  string            `json:"total_amount"`
}
