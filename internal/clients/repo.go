package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a clients repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Client{}).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*ClientList, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})

	if filters.Segment != "" {
		query = query.Where("segment = ?", filters.Segment)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("full_name LIKE ? OR phone LIKE ?", like, like)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var items []models.Client
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	list := &ClientList{Items: items}
	if len(items) > limit {
		list.Items = items[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

// FindExistingPhones looks up which of the candidate phones already exist,
// chunking the IN queries to respect query size limits.
func (r *repository) FindExistingPhones(ctx context.Context, phones []string, chunkSize int) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(phones))
	if len(phones) == 0 {
		return existing, nil
	}
	if chunkSize <= 0 {
		chunkSize = 500
	}

	for start := 0; start < len(phones); start += chunkSize {
		end := start + chunkSize
		if end > len(phones) {
			end = len(phones)
		}
		var found []string
		err := r.db.WithContext(ctx).
			Model(&models.Client{}).
			Where("phone IN ?", phones[start:end]).
			Pluck("phone", &found).Error
		if err != nil {
			return nil, err
		}
		for _, phone := range found {
			existing[phone] = struct{}{}
		}
	}
	return existing, nil
}

// UpsertBatch inserts the records, resolving phone conflicts either by
// updating the stored profile or by leaving the existing row untouched.
func (r *repository) UpsertBatch(ctx context.Context, records []models.Client, updateExisting bool) error {
	if len(records) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoNothing: true,
	}
	if updateExisting {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "city", "zone", "address", "notes", "updated_at"}),
		}
	}

	return r.db.WithContext(ctx).
		Clauses(onConflict).
		Create(&records).Error
}
