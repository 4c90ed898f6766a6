package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderInput carries the fields needed to register a new order.
type CreateOrderInput struct {
	ClientID    *uuid.UUID
	ClientName  string
	ClientPhone string
	City        *string
	Zone        *string
	Address     *string
	ProductName string
	Quantity    int
	TotalAmount decimal.Decimal
	Source      string
	Notes       *string
}

// ChangeStatusInput captures a status transition request.
type ChangeStatusInput struct {
	OrderID     uuid.UUID
	Target      string
	ActorUserID uuid.UUID
	ActorRole   string
	Notes       *string
}

// AssignInput captures a manual assignment by a supervisor.
type AssignInput struct {
	OrderID     uuid.UUID
	AgentID     uuid.UUID
	ActorUserID uuid.UUID
}
