package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

func setupDirectoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  external_id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  role TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

type recordingSyncer struct {
	calls []string
	err   error
}

func (r *recordingSyncer) SyncRoleMetadata(_ context.Context, externalID, role string) error {
	r.calls = append(r.calls, externalID+":"+role)
	return r.err
}

func newDirectoryService(t *testing.T, db *gorm.DB, syncer RoleSyncer) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), syncer, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func strPtr(v string) *string { return &v }

func TestUpsertCreatesUser(t *testing.T) {
	db := setupDirectoryTestDB(t)
	syncer := &recordingSyncer{}
	svc := newDirectoryService(t, db, syncer)

	user, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "buyer@example.com",
		Role:       enums.RoleBuyer,
		FirstName:  strPtr("Ada"),
	})
	require.NoError(t, err)
	require.Equal(t, "ext_1", user.ExternalID)
	require.Equal(t, enums.RoleBuyer, user.Role)
	require.Len(t, syncer.calls, 1)
	require.Equal(t, "ext_1:buyer", syncer.calls[0])
}

func TestUpsertIsIdempotentByExternalID(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "first@example.com",
		Role:       enums.RoleBuyer,
	})
	require.NoError(t, err)

	updated, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "second@example.com",
		Role:       enums.RoleSeller,
	})
	require.NoError(t, err)
	require.Equal(t, "second@example.com", updated.Email)
	require.Equal(t, enums.RoleSeller, updated.Role)

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpsertRejectsAdminRole(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "admin@example.com",
		Role:       enums.RoleAdmin,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpsertRejectsUnknownRoleAndMissingFields(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "x@example.com",
		Role:       enums.Role("superuser"),
	})
	require.Error(t, err)

	_, err = svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "",
		Email:      "x@example.com",
		Role:       enums.RoleBuyer,
	})
	require.Error(t, err)
}

func TestUpsertSurvivesSyncerFailure(t *testing.T) {
	db := setupDirectoryTestDB(t)
	syncer := &recordingSyncer{err: errors.New("provider down")}
	svc := newDirectoryService(t, db, syncer)

	user, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "buyer@example.com",
		Role:       enums.RoleBuyer,
	})
	require.NoError(t, err)
	require.Equal(t, enums.RoleBuyer, user.Role)
}

func TestRoleReturnsNotFoundForUnknownUser(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Role(context.Background(), "missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRoleReadsStoredRole(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "seller@example.com",
		Role:       enums.RoleSeller,
	})
	require.NoError(t, err)

	role, err := svc.Role(context.Background(), "ext_1")
	require.NoError(t, err)
	require.Equal(t, enums.RoleSeller, role)
}

func TestUpdateRoleAndListByRole(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "user@example.com",
		Role:       enums.RoleBuyer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRole(context.Background(), "ext_1", enums.RoleSeller))

	sellers, err := svc.ListByRole(context.Background(), enums.RoleSeller)
	require.NoError(t, err)
	require.Len(t, sellers, 1)

	buyers, err := svc.ListByRole(context.Background(), enums.RoleBuyer)
	require.NoError(t, err)
	require.Empty(t, buyers)

	err = svc.UpdateRole(context.Background(), "missing", enums.RoleBuyer)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteUser(t *testing.T) {
	db := setupDirectoryTestDB(t)
	svc := newDirectoryService(t, db, nil)

	_, err := svc.Upsert(context.Background(), UpsertInput{
		ExternalID: "ext_1",
		Email:      "user@example.com",
		Role:       enums.RoleBuyer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "ext_1"))

	_, err = svc.FindByExternalID(context.Background(), "ext_1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
