package distribution

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

// Repository persists distributor audit records.
type Repository interface {
	RecordRun(ctx context.Context, run *models.DistributionRun) error
	FindRun(ctx context.Context, id uuid.UUID) (*models.DistributionRun, error)
	ListRuns(ctx context.Context, params pagination.Params) (*RunList, error)
}

// RunList is one cursor page of distribution runs.
type RunList struct {
	Items      []models.DistributionRun `json:"items"`
	NextCursor *string                  `json:"next_cursor,omitempty"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a distribution audit repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// RecordRun stores the run together with its per-order assignment rows.
func (r *repository) RecordRun(ctx context.Context, run *models.DistributionRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindRun(ctx context.Context, id uuid.UUID) (*models.DistributionRun, error) {
	var run models.DistributionRun
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) ListRuns(ctx context.Context, params pagination.Params) (*RunList, error) {
	query := r.db.WithContext(ctx).Model(&models.DistributionRun{})

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(ran_at < ?) OR (ran_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var items []models.DistributionRun
	err = query.
		Order("ran_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	list := &RunList{Items: items}
	if len(items) > limit {
		list.Items = items[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.RanAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
