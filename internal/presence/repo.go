package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
)

// Repository defines persistence for session heartbeats.
type Repository interface {
	Heartbeat(ctx context.Context, userID uuid.UUID, role enums.UserRole, at time.Time) error
	OnlineCallers(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a presence repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Heartbeat upserts the caller's last-seen timestamp.
func (r *repository) Heartbeat(ctx context.Context, userID uuid.UUID, role enums.UserRole, at time.Time) error {
	row := models.CallerPresence{UserID: userID, Role: role, LastSeen: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "last_seen"}),
		}).
		Create(&row).Error
}

// OnlineCallers returns call agents whose heartbeat is fresher than since.
func (r *repository) OnlineCallers(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CallerPresence{}).
		Where("role = ? AND last_seen >= ?", enums.UserRoleCaller, since).
		Order("last_seen DESC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteStaleBefore prunes heartbeat rows older than the cutoff.
func (r *repository) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_seen < ?", cutoff).
		Delete(&models.CallerPresence{})
	return result.RowsAffected, result.Error
}
