package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/department/domain"
	"github.com/parleyhq/parley/internal/department/repository"
	"github.com/parleyhq/parley/internal/migration"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	}).(*Service)
	return svc, db
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateDepartmentRequest{
		Name:      " Emergency ",
		Address:   "12 Harbor St",
		UTCOffset: "+02:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Emergency", created.Name)
	assert.Equal(t, "+02:00", created.UTCOffset)

	_, err = svc.Create(ctx, domain.CreateDepartmentRequest{Name: "", UTCOffset: "+00:00"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateDepartmentRequest{Name: "Ward", UTCOffset: "02:00"})
	assert.ErrorIs(t, err, domain.ErrInvalidOffset)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateDepartmentRequest{Name: "Ward", UTCOffset: "+00:00"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateDepartmentRequest{
		ID:        created.ID,
		Name:      "Ward B",
		UTCOffset: "-05:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ward B", updated.Name)
	assert.Equal(t, "-05:00", updated.UTCOffset)

	_, err = svc.Update(ctx, domain.UpdateDepartmentRequest{ID: uuid.New(), Name: "X", UTCOffset: "+00:00"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteGuards(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, domain.DefaultDepartmentID), domain.ErrDefault)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), domain.ErrNotFound)

	created, err := svc.Create(ctx, domain.CreateDepartmentRequest{Name: "Ward", UTCOffset: "+00:00"})
	require.NoError(t, err)
	user := userdomain.User{
		ID:           uuid.New(),
		Login:        "nurse",
		Password:     "x",
		IsActive:     true,
		CreateTS:     time.Now().UTC(),
		DepartmentID: created.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrHasUsers)

	require.NoError(t, db.Delete(&user).Error)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := svc.Create(ctx, domain.CreateDepartmentRequest{Name: name, UTCOffset: "+00:00"})
		require.NoError(t, err)
	}
	departments, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, departments, 2)
}
