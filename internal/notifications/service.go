package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/internal/users"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// Service sends operational notifications to agents. Delivery is best
// effort; callers never block on it.
type Service struct {
	users  users.Repository
	sender SMSSender
	logger *logger.Logger
}

// NewService builds the notification service.
func NewService(repo users.Repository, sender SMSSender, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications.NewService: nil users repository")
	}
	if logg == nil {
		return nil, fmt.Errorf("notifications.NewService: nil logger")
	}
	if sender == nil {
		sender = NoopSender{}
	}
	return &Service{users: repo, sender: sender, logger: logg}, nil
}

// NotifyAssignments texts the agent how many orders they just received.
// Implements the distributor's notifier contract.
func (s *Service) NotifyAssignments(ctx context.Context, agentID uuid.UUID, count int) {
	user, err := s.users.FindByID(ctx, agentID)
	if err != nil {
		s.logger.Error(ctx, fmt.Sprintf("notifications: loading agent %s failed", agentID), err)
		return
	}
	if user.Phone == nil || *user.Phone == "" {
		return
	}

	message := fmt.Sprintf("Vous avez reçu %d nouvelle(s) commande(s) à traiter.", count)
	if err := s.sender.Send(ctx, *user.Phone, message); err != nil {
		s.logger.Error(ctx, fmt.Sprintf("notifications: sms to agent %s failed", agentID), err)
	}
}
