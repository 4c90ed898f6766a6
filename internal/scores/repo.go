package scores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
)

// Repository defines persistence for caller performance scores.
type Repository interface {
	ScoresFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
	AddPoints(ctx context.Context, userID uuid.UUID, points int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a scores repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ScoresFor returns the recorded points for the given users. Users without a
// row are simply absent from the map; callers default them to zero.
func (r *repository) ScoresFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var rows []models.CallerScore
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row.Points
	}
	return result, nil
}

// AddPoints credits points to the user, creating the row on first award.
func (r *repository) AddPoints(ctx context.Context, userID uuid.UUID, points int) error {
	row := models.CallerScore{UserID: userID, Points: points}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"points": gorm.Expr("caller_scores.points + ?", points),
			}),
		}).
		Create(&row).Error
}
