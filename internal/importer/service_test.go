package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/internal/clients"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

// fakeClientRepo keeps clients keyed by phone and records batch calls.
type fakeClientRepo struct {
	byPhone     map[string]models.Client
	batches     [][]models.Client
	failBatches map[int]bool // 0-based batch index -> fail
	lookupErr   error
	onBatch     func(batchIndex int)
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{byPhone: map[string]models.Client{}, failBatches: map[int]bool{}}
}

func (f *fakeClientRepo) WithTx(tx *gorm.DB) clients.Repository { return f }

func (f *fakeClientRepo) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	f.byPhone[client.Phone] = *client
	return client, nil
}

func (f *fakeClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClientRepo) FindByPhone(ctx context.Context, phone string) (*models.Client, error) {
	c, ok := f.byPhone[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeClientRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeClientRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeClientRepo) List(ctx context.Context, params pagination.Params, filters clients.Filters) (*clients.ClientList, error) {
	return &clients.ClientList{}, nil
}

func (f *fakeClientRepo) FindExistingPhones(ctx context.Context, phones []string, chunkSize int) (map[string]struct{}, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	found := map[string]struct{}{}
	for _, p := range phones {
		if _, ok := f.byPhone[p]; ok {
			found[p] = struct{}{}
		}
	}
	return found, nil
}

func (f *fakeClientRepo) UpsertBatch(ctx context.Context, records []models.Client, updateExisting bool) error {
	idx := len(f.batches)
	f.batches = append(f.batches, records)
	if f.onBatch != nil {
		f.onBatch(idx)
	}
	if f.failBatches[idx] {
		return fmt.Errorf("batch %d boom", idx)
	}
	for _, r := range records {
		if _, exists := f.byPhone[r.Phone]; exists && !updateExisting {
			continue
		}
		f.byPhone[r.Phone] = r
	}
	return nil
}

type fakeCache struct {
	invalidations int
}

func (f *fakeCache) InvalidateClients(ctx context.Context) { f.invalidations++ }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo clients.Repository, cache CacheInvalidator, batchSize int) *Service {
	t.Helper()
	svc, err := NewService(Params{
		Clients:    repo,
		Cache:      cache,
		Logger:     testLogger(),
		BatchSize:  batchSize,
		LookupSize: 500,
	})
	require.NoError(t, err)
	return svc
}

func buildFile(rows int, dupGroup int) string {
	var sb strings.Builder
	sb.WriteString("nom;telephone\n")
	unique := rows - dupGroup
	for i := 0; i < unique; i++ {
		fmt.Fprintf(&sb, "Client %04d;06%08d\n", i, i)
	}
	for i := 0; i < dupGroup; i++ {
		fmt.Fprintf(&sb, "Doublon %d;0699999999\n", i)
	}
	return sb.String()
}

func TestImportIgnoreModeWithInFileDuplicates(t *testing.T) {
	repo := newFakeClientRepo()
	cache := &fakeCache{}
	svc := newTestService(t, repo, cache, 500)

	res := svc.Run(context.Background(), buildFile(2000, 3), enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusComplete, res.Status)
	assert.Equal(t, 1997, res.Stats.Inserted)
	assert.Equal(t, 0, res.Stats.Updated)
	assert.Equal(t, 3, res.Stats.Skipped)
	assert.Equal(t, 0, res.Stats.Errors)
	require.Len(t, res.Duplicates, 1)
	assert.Len(t, res.Duplicates[0].Rows, 3)
	assert.Equal(t, 1, cache.invalidations)

	progress := svc.Progress()
	assert.Equal(t, enums.ImportStatusComplete, progress.Status)
	assert.Equal(t, float64(100), progress.Percent)
	assert.Equal(t, 4, progress.TotalBatches)
	assert.Equal(t, 1997, progress.Imported)
}

func TestImportIgnoreModeSkipsExistingPhones(t *testing.T) {
	repo := newFakeClientRepo()
	repo.byPhone["0600000001"] = models.Client{Phone: "0600000001", FullName: "Déjà Là"}
	svc := newTestService(t, repo, nil, 500)

	res := svc.Run(context.Background(), buildFile(10, 0), enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusComplete, res.Status)
	assert.Equal(t, 9, res.Stats.Inserted)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, "Déjà Là", repo.byPhone["0600000001"].FullName)
}

func TestImportUpdateModeUpsertsExistingPhones(t *testing.T) {
	repo := newFakeClientRepo()
	repo.byPhone["0600000001"] = models.Client{Phone: "0600000001", FullName: "Ancien Nom"}
	svc := newTestService(t, repo, nil, 500)

	res := svc.Run(context.Background(), buildFile(10, 0), enums.DuplicateModeUpdate)

	assert.Equal(t, enums.ImportStatusComplete, res.Status)
	assert.Equal(t, 9, res.Stats.Inserted)
	assert.Equal(t, 1, res.Stats.Updated)
	assert.Equal(t, 0, res.Stats.Skipped)
	assert.Equal(t, "Client 0001", repo.byPhone["0600000001"].FullName)
}

func TestImportBatchErrorCountsWholeBatchAndContinues(t *testing.T) {
	repo := newFakeClientRepo()
	repo.failBatches[1] = true
	svc := newTestService(t, repo, nil, 10)

	res := svc.Run(context.Background(), buildFile(35, 0), enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusComplete, res.Status)
	assert.Equal(t, 25, res.Stats.Inserted)
	assert.Equal(t, 10, res.Stats.Errors)
	assert.Len(t, repo.batches, 4)
}

func TestImportCancellationStopsAfterCurrentBatch(t *testing.T) {
	repo := newFakeClientRepo()
	ctx, cancel := context.WithCancel(context.Background())
	repo.onBatch = func(batchIndex int) {
		if batchIndex == 1 {
			cancel()
		}
	}
	svc := newTestService(t, repo, nil, 10)

	res := svc.Run(ctx, buildFile(50, 0), enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusCancelled, res.Status)
	assert.Equal(t, 20, res.Stats.Inserted)
	assert.Len(t, repo.batches, 2)

	progress := svc.Progress()
	assert.Equal(t, enums.ImportStatusCancelled, progress.Status)
	assert.Equal(t, 2, progress.CurrentBatch)
	assert.Equal(t, 5, progress.TotalBatches)
}

func TestImportLookupFailureAbortsWithErrorStatus(t *testing.T) {
	repo := newFakeClientRepo()
	repo.lookupErr = fmt.Errorf("connection refused")
	svc := newTestService(t, repo, nil, 500)

	res := svc.Run(context.Background(), buildFile(10, 0), enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusError, res.Status)
	assert.Contains(t, res.Message, "phone lookup failed")
	assert.Empty(t, repo.batches)
}

func TestImportUnparsableFileReportsError(t *testing.T) {
	repo := newFakeClientRepo()
	svc := newTestService(t, repo, nil, 500)

	res := svc.Run(context.Background(), "ville;adresse\nCasa;rue A\n", enums.DuplicateModeIgnore)

	assert.Equal(t, enums.ImportStatusError, res.Status)
	assert.Contains(t, res.Message, "parse failed")
}

func TestStartRefusesConcurrentRuns(t *testing.T) {
	repo := newFakeClientRepo()
	release := make(chan struct{})
	repo.onBatch = func(int) { <-release }
	svc := newTestService(t, repo, nil, 10)

	require.NoError(t, svc.Start(context.Background(), buildFile(10, 0), enums.DuplicateModeIgnore))
	err := svc.Start(context.Background(), buildFile(10, 0), enums.DuplicateModeIgnore)
	assert.Error(t, err)
	close(release)

	assert.Eventually(t, func() bool {
		return svc.LastResult() != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestResetRefusedWhileRunning(t *testing.T) {
	repo := newFakeClientRepo()
	release := make(chan struct{})
	repo.onBatch = func(int) { <-release }
	svc := newTestService(t, repo, nil, 10)

	require.NoError(t, svc.Start(context.Background(), buildFile(10, 0), enums.DuplicateModeIgnore))
	assert.Error(t, svc.Reset())
	close(release)

	assert.Eventually(t, func() bool {
		return svc.LastResult() != nil
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, svc.Reset())
	assert.Equal(t, enums.ImportStatusIdle, svc.Progress().Status)
}
