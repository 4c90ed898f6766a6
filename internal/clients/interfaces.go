package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

// Repository defines persistence operations for the clients table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByPhone(ctx context.Context, phone string) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*ClientList, error)
	FindExistingPhones(ctx context.Context, phones []string, chunkSize int) (map[string]struct{}, error)
	UpsertBatch(ctx context.Context, records []models.Client, updateExisting bool) error
}

// Filters narrows client listings.
type Filters struct {
	Segment string
	Search  string
}

// ClientList is one cursor page of clients.
type ClientList struct {
	Items      []models.Client `json:"items"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}
