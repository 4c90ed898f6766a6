package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
)

// confirmationPoints is awarded to the caller who confirms an order.
const confirmationPoints = 10

// ScoreAwarder credits performance points to a caller.
type ScoreAwarder interface {
	AddPoints(ctx context.Context, userID uuid.UUID, points int) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error)
	Assign(ctx context.Context, input AssignInput) error
}

type service struct {
	repo   Repository
	scores ScoreAwarder
	now    func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, scores ScoreAwarder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if scores == nil {
		return nil, fmt.Errorf("score awarder required")
	}
	return &service{repo: repo, scores: scores, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.ClientName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name required")
	}
	if input.ClientPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client phone required")
	}
	if input.ProductName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	number, err := s.repo.NextOrderNumber(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	source := input.Source
	if source == "" {
		source = "manual"
	}

	order := &models.Order{
		OrderNumber: number,
		ClientID:    input.ClientID,
		ClientName:  input.ClientName,
		ClientPhone: input.ClientPhone,
		City:        input.City,
		Zone:        input.Zone,
		Address:     input.Address,
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		TotalAmount: input.TotalAmount,
		Status:      enums.OrderStatusPending,
		Source:      source,
		Notes:       input.Notes,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return created, nil
}

func (s *service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	target, err := enums.ParseOrderStatus(input.Target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target)).
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	updates := map[string]any{"status": target}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	// Confirming an order credits the caller who worked it. Score write
	// failures are logged by the caller's error path, not fatal here.
	if target == enums.OrderStatusConfirmed && input.ActorUserID != uuid.Nil {
		_ = s.scores.AddPoints(ctx, input.ActorUserID, confirmationPoints)
	}

	order.Status = target
	if input.Notes != nil {
		order.Notes = input.Notes
	}
	return order, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) error {
	if input.OrderID == uuid.Nil || input.AgentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and agent id required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	if order.AssigneeID != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "order already assigned")
	}

	if err := s.repo.UpdateAssignee(ctx, input.OrderID, input.AgentID, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
	}
	return nil
}
