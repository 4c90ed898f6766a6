package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/security"
)

type fakeUsersRepo struct {
	byID      map[uuid.UUID]*models.User
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user.ID = uuid.New()
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsersRepo) ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	out := []models.User{}
	for _, user := range f.byID {
		if user.Role == role && user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) ListAll(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, user := range f.byID {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["full_name"].(string); ok {
		user.FullName = name
	}
	if role, ok := updates["role"].(enums.UserRole); ok {
		user.Role = role
	}
	if active, ok := updates["active"].(bool); ok {
		user.Active = active
	}
	if hash, ok := updates["password_hash"].(string); ok {
		user.PasswordHash = hash
	}
	return nil
}

func testUsersPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestCreateGeneratesTempPassword(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	result, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Amina Tazi",
		Email:    "Amina@Example.com",
		Role:     "caller",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "amina@example.com", result.User.Email)
	assert.Len(t, result.TempPassword, tempPasswordLength)

	stored := repo.byID[result.User.ID]
	ok, err := security.VerifyPassword(result.TempPassword, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateKeepsSuppliedPasswordSecret(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	result, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Omar B",
		Email:    "omar@example.com",
		Role:     "supervisor",
		Password: "chosen-by-admin",
	})
	require.NoError(t, err)
	assert.Empty(t, result.TempPassword)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, err := NewService(newFakeUsersRepo(), testUsersPasswordCfg())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{
		FullName: "X",
		Email:    "x@example.com",
		Role:     "superuser",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	repo := newFakeUsersRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "uq_users_email"`)
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{
		FullName: "X",
		Email:    "x@example.com",
		Role:     "caller",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpdateChangesRoleAndActive(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Leila",
		Email:    "leila@example.com",
		Role:     "caller",
	})
	require.NoError(t, err)

	role := "supervisor"
	active := false
	updated, err := svc.Update(context.Background(), created.User.ID, UpdateUserInput{
		Role:   &role,
		Active: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSupervisor, updated.Role)
	assert.False(t, updated.Active)
}

func TestUpdateRejectsEmptyName(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	empty := "  "
	_, err = svc.Update(context.Background(), uuid.New(), UpdateUserInput{FullName: &empty})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateUnknownUserNotFound(t *testing.T) {
	svc, err := NewService(newFakeUsersRepo(), testUsersPasswordCfg())
	require.NoError(t, err)

	active := true
	_, err = svc.Update(context.Background(), uuid.New(), UpdateUserInput{Active: &active})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestResetPasswordReplacesHash(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testUsersPasswordCfg())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Karim",
		Email:    "karim@example.com",
		Role:     "delivery",
		Password: "initial-password",
	})
	require.NoError(t, err)

	password, err := svc.ResetPassword(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Len(t, password, tempPasswordLength)

	stored := repo.byID[created.User.ID]
	ok, err := security.VerifyPassword(password, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("initial-password", stored.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}
