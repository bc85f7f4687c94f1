package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/auth/password"
	"github.com/parleyhq/parley/internal/clock"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	conversationrepository "github.com/parleyhq/parley/internal/conversation/repository"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	"github.com/parleyhq/parley/internal/migration"
	"github.com/parleyhq/parley/internal/registry"
	"github.com/parleyhq/parley/internal/session/domain"
	sessionrepository "github.com/parleyhq/parley/internal/session/repository"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	userrepository "github.com/parleyhq/parley/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      *Service
	db       *gorm.DB
	clock    *clock.FakeClock
	registry *registry.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	department := departmentdomain.Department{
		ID:        departmentdomain.DefaultDepartmentID,
		Name:      "Main",
		UTCOffset: "+00:00",
	}
	require.NoError(t, db.Create(&department).Error)

	fake := clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	reg := registry.New()
	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fake,
		Repo:          sessionrepository.Provide(),
		Users:         userrepository.Provide(),
		Conversations: conversationrepository.Provide(),
		Registry:      reg,
	}).(*Service)
	return &fixture{svc: svc, db: db, clock: fake, registry: reg}
}

func (f *fixture) seedUser(t *testing.T, login, plain string, active bool) uuid.UUID {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	user := userdomain.User{
		ID:           uuid.New(),
		Login:        login,
		Password:     hashed,
		IsActive:     active,
		CreateTS:     f.clock.Now(),
		DepartmentID: departmentdomain.DefaultDepartmentID,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func (f *fixture) login(t *testing.T, login, plain string) domain.Session {
	t.Helper()
	session, err := f.svc.Login(context.Background(), domain.LoginRequest{Login: login, Password: plain})
	require.NoError(t, err)
	return session
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "nurse", "secret", true)

	session := f.login(t, "nurse", "secret")
	assert.True(t, session.Open())
	require.NotNil(t, session.User)
	assert.Equal(t, "nurse", session.User.Login)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Login: "nurse", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), domain.LoginRequest{Login: "ghost", Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "retired", "secret", false)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Login: "retired", Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrUserNotActive)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "nurse", "secret", true)
	session := f.login(t, "nurse", "secret")

	validated, err := f.svc.Validate(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)

	_, err = f.svc.Validate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestValidateClosedSessionClosesConversations(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "nurse", "secret", true)
	session := f.login(t, "nurse", "secret")

	conversation := conversationdomain.Conversation{
		ID:             uuid.New(),
		StartTS:        f.clock.Now(),
		FirstSessionID: session.ID,
	}
	require.NoError(t, f.db.Create(&conversation).Error)
	f.registry.Ensure(conversation.ID)

	require.NoError(t, f.db.Exec(
		`UPDATE sessions SET logout_ts = ? WHERE primary_uuid = ?`, f.clock.Now(), session.ID,
	).Error)

	_, err := f.svc.Validate(context.Background(), session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	var stored conversationdomain.Conversation
	require.NoError(t, f.db.Where("primary_uuid = ?", conversation.ID).Take(&stored).Error)
	assert.NotNil(t, stored.EndTS)

	_, tracked := f.registry.Get(conversation.ID)
	assert.False(t, tracked)
}

func TestValidateInactiveUserClosesEverything(t *testing.T) {
	f := newFixture(t)
	userID := f.seedUser(t, "nurse", "secret", true)
	first := f.login(t, "nurse", "secret")
	second := f.login(t, "nurse", "secret")

	conversation := conversationdomain.Conversation{
		ID:             uuid.New(),
		StartTS:        f.clock.Now(),
		FirstSessionID: second.ID,
	}
	require.NoError(t, f.db.Create(&conversation).Error)

	require.NoError(t, f.db.Exec(
		`UPDATE users SET is_active = ? WHERE primary_uuid = ?`, false, userID,
	).Error)

	_, err := f.svc.Validate(context.Background(), first.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotActive)

	var openSessions int64
	require.NoError(t, f.db.Model(&domain.Session{}).
		Where("user_uuid = ? AND logout_ts IS NULL", userID).
		Count(&openSessions).Error)
	assert.Zero(t, openSessions)

	var stored conversationdomain.Conversation
	require.NoError(t, f.db.Where("primary_uuid = ?", conversation.ID).Take(&stored).Error)
	assert.NotNil(t, stored.EndTS)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "nurse", "secret", true)
	session := f.login(t, "nurse", "secret")

	conversation := conversationdomain.Conversation{
		ID:             uuid.New(),
		StartTS:        f.clock.Now(),
		FirstSessionID: session.ID,
	}
	require.NoError(t, f.db.Create(&conversation).Error)

	require.NoError(t, f.svc.Logout(context.Background(), session.ID))

	_, err := f.svc.Validate(context.Background(), session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	var stored conversationdomain.Conversation
	require.NoError(t, f.db.Where("primary_uuid = ?", conversation.ID).Take(&stored).Error)
	assert.NotNil(t, stored.EndTS)

	assert.ErrorIs(t, f.svc.Logout(context.Background(), uuid.New()), domain.ErrSessionNotFound)
}

func TestOtherOpenSessionsAndCloseOthers(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "nurse", "secret", true)
	first := f.login(t, "nurse", "secret")
	second := f.login(t, "nurse", "secret")
	third := f.login(t, "nurse", "secret")

	others, err := f.svc.OtherOpenSessions(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Len(t, others, 2)

	closed, err := f.svc.CloseOthers(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	others, err = f.svc.OtherOpenSessions(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Empty(t, others)

	for _, id := range []uuid.UUID{second.ID, third.ID} {
		_, err := f.svc.Validate(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrSessionClosed)
	}

	validated, err := f.svc.Validate(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, validated.Open())
}
