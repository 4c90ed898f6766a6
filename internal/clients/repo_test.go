package clients

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

func setupClientsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  phone TEXT NOT NULL UNIQUE,
  city TEXT,
  zone TEXT,
  address TEXT,
  notes TEXT,
  segment TEXT NOT NULL DEFAULT 'new',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newClient(name, phone string) models.Client {
	return models.Client{
		ID:       uuid.New(),
		FullName: name,
		Phone:    phone,
		Segment:  enums.ClientSegmentNew,
	}
}

func TestFindExistingPhonesChunksQueries(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	var stored []string
	for i := 0; i < 7; i++ {
		phone := fmt.Sprintf("06000000%02d", i)
		stored = append(stored, phone)
		_, err := repo.Create(ctx, &models.Client{ID: uuid.New(), FullName: "C", Phone: phone})
		require.NoError(t, err)
	}

	candidates := append([]string{}, stored...)
	candidates = append(candidates, "0699999999", "0688888888")

	existing, err := repo.FindExistingPhones(ctx, candidates, 3)
	require.NoError(t, err)
	assert.Len(t, existing, 7)
	for _, phone := range stored {
		assert.Contains(t, existing, phone)
	}
	assert.NotContains(t, existing, "0699999999")
}

func TestUpsertBatchIgnoreLeavesExistingUntouched(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	original := newClient("Ancien Nom", "0612345678")
	_, err := repo.Create(ctx, &original)
	require.NoError(t, err)

	batch := []models.Client{
		newClient("Nouveau Nom", "0612345678"),
		newClient("Sara L", "0699887766"),
	}
	require.NoError(t, repo.UpsertBatch(ctx, batch, false))

	kept, err := repo.FindByPhone(ctx, "0612345678")
	require.NoError(t, err)
	assert.Equal(t, "Ancien Nom", kept.FullName)

	added, err := repo.FindByPhone(ctx, "0699887766")
	require.NoError(t, err)
	assert.Equal(t, "Sara L", added.FullName)
}

func TestUpsertBatchUpdateOverwritesProfile(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	original := newClient("Ancien Nom", "0612345678")
	_, err := repo.Create(ctx, &original)
	require.NoError(t, err)

	city := "Casablanca"
	updated := newClient("Nouveau Nom", "0612345678")
	updated.City = &city
	require.NoError(t, repo.UpsertBatch(ctx, []models.Client{updated}, true))

	stored, err := repo.FindByPhone(ctx, "0612345678")
	require.NoError(t, err)
	assert.Equal(t, "Nouveau Nom", stored.FullName)
	require.NotNil(t, stored.City)
	assert.Equal(t, "Casablanca", *stored.City)
	assert.Equal(t, original.ID, stored.ID, "conflict update keeps the original row")
}

func TestListFiltersBySegmentAndSearch(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vip := newClient("Amine K", "0611111111")
	vip.Segment = enums.ClientSegmentVIP
	_, err := repo.Create(ctx, &vip)
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Client{ID: uuid.New(), FullName: "Sara L", Phone: "0622222222"})
	require.NoError(t, err)

	bySegment, err := repo.List(ctx, pagination.Params{Limit: 10}, Filters{Segment: "vip"})
	require.NoError(t, err)
	require.Len(t, bySegment.Items, 1)
	assert.Equal(t, "Amine K", bySegment.Items[0].FullName)

	bySearch, err := repo.List(ctx, pagination.Params{Limit: 10}, Filters{Search: "0622"})
	require.NoError(t, err)
	require.Len(t, bySearch.Items, 1)
	assert.Equal(t, "Sara L", bySearch.Items[0].FullName)
}
