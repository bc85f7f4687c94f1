package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/conversation/repository"
	"github.com/parleyhq/parley/internal/migration"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/registry"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))
	return db
}

func newResolver(t *testing.T, db *gorm.DB) (*Resolver, *registry.Registry, *clock.FakeClock) {
	t.Helper()
	reg := registry.New()
	fake := clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	resolver := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fake,
		Repo:     repository.Provide(),
		Registry: reg,
		Metrics:  observability.NewMetrics(),
	}).(*Resolver)
	return resolver, reg, fake
}

func seedSession(t *testing.T, db *gorm.DB, userID uuid.UUID) uuid.UUID {
	t.Helper()
	session := sessiondomain.Session{
		ID:      uuid.New(),
		LoginTS: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		UserID:  userID,
	}
	require.NoError(t, db.Create(&session).Error)
	return session.ID
}

func TestJoinOrCreateOpensNewConversation(t *testing.T) {
	db := newTestDB(t)
	resolver, reg, _ := newResolver(t, db)
	sessionID := seedSession(t, db, uuid.New())

	conversation, err := resolver.JoinOrCreate(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, sessionID, conversation.FirstSessionID)
	assert.Nil(t, conversation.SecondSessionID)
	assert.True(t, conversation.Open())

	entry, ok := reg.Get(conversation.ID)
	require.True(t, ok)
	assert.Equal(t, registry.SlotFirst, entry.SlotOf(sessionID))
}

func TestJoinOrCreatePairsWithWaiting(t *testing.T) {
	db := newTestDB(t)
	resolver, reg, _ := newResolver(t, db)
	first := seedSession(t, db, uuid.New())
	second := seedSession(t, db, uuid.New())

	opened, err := resolver.JoinOrCreate(context.Background(), first, uuid.New())
	require.NoError(t, err)

	joined, err := resolver.JoinOrCreate(context.Background(), second, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, opened.ID, joined.ID)
	require.NotNil(t, joined.SecondSessionID)
	assert.Equal(t, second, *joined.SecondSessionID)

	entry, ok := reg.Get(joined.ID)
	require.True(t, ok)
	assert.Equal(t, registry.SlotFirst, entry.SlotOf(first))
	assert.Equal(t, registry.SlotSecond, entry.SlotOf(second))
}

func TestJoinOrCreateSkipsOwnWaitingConversation(t *testing.T) {
	db := newTestDB(t)
	resolver, _, _ := newResolver(t, db)
	userID := uuid.New()
	sessionID := seedSession(t, db, userID)

	opened, err := resolver.JoinOrCreate(context.Background(), sessionID, userID)
	require.NoError(t, err)

	// The same (session, user) pair must not pair with itself.
	again, err := resolver.JoinOrCreate(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.NotEqual(t, opened.ID, again.ID)
	assert.Nil(t, again.SecondSessionID)
}

func TestJoinOrCreateAllowsOtherSessionOfSameUser(t *testing.T) {
	db := newTestDB(t)
	resolver, _, _ := newResolver(t, db)
	userID := uuid.New()
	first := seedSession(t, db, userID)
	second := seedSession(t, db, userID)

	opened, err := resolver.JoinOrCreate(context.Background(), first, userID)
	require.NoError(t, err)

	joined, err := resolver.JoinOrCreate(context.Background(), second, userID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, joined.ID)
}

func TestJoinOrCreateFallsBackOnLostClaim(t *testing.T) {
	db := newTestDB(t)
	resolver, _, _ := newResolver(t, db)
	waitingSession := seedSession(t, db, uuid.New())
	rival := seedSession(t, db, uuid.New())
	late := seedSession(t, db, uuid.New())

	opened, err := resolver.JoinOrCreate(context.Background(), waitingSession, uuid.New())
	require.NoError(t, err)

	// The rival fills the slot between the late session's lookup and claim.
	resolver.repo = &racingRepo{Repository: resolver.repo, db: db, rival: rival}

	got, err := resolver.JoinOrCreate(context.Background(), late, uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, opened.ID, got.ID)
	assert.Equal(t, late, got.FirstSessionID)

	var stored domain.Conversation
	require.NoError(t, db.Where("primary_uuid = ?", opened.ID).Take(&stored).Error)
	require.NotNil(t, stored.SecondSessionID)
	assert.Equal(t, rival, *stored.SecondSessionID)
}

// racingRepo claims the waiting slot for a rival right before the caller's
// own claim, forcing the conflict path.
type racingRepo struct {
	domain.Repository
	db    *gorm.DB
	rival uuid.UUID
}

func (r *racingRepo) Claim(ctx context.Context, db *gorm.DB, id, sessionID uuid.UUID) (bool, error) {
	if _, err := r.Repository.Claim(ctx, r.db, id, r.rival); err != nil {
		return false, err
	}
	return r.Repository.Claim(ctx, db, id, sessionID)
}

func TestResumeReturnsOpenConversation(t *testing.T) {
	db := newTestDB(t)
	resolver, _, _ := newResolver(t, db)
	sessionID := seedSession(t, db, uuid.New())

	_, err := resolver.Resume(context.Background(), sessionID)
	assert.ErrorIs(t, err, domain.ErrNoConversation)

	opened, err := resolver.JoinOrCreate(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)

	resumed, err := resolver.Resume(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, resumed.ID)

	require.NoError(t, resolver.Close(context.Background(), opened.ID, sessionID))
	_, err = resolver.Resume(context.Background(), sessionID)
	assert.ErrorIs(t, err, domain.ErrNoConversation)
}

func TestCloseWritesSummaryAndEvictsEntry(t *testing.T) {
	db := newTestDB(t)
	resolver, reg, fake := newResolver(t, db)
	first := seedSession(t, db, uuid.New())
	second := seedSession(t, db, uuid.New())

	opened, err := resolver.JoinOrCreate(context.Background(), first, uuid.New())
	require.NoError(t, err)
	_, err = resolver.JoinOrCreate(context.Background(), second, uuid.New())
	require.NoError(t, err)

	entry, ok := reg.Get(opened.ID)
	require.True(t, ok)
	require.NoError(t, entry.SetLanguage(first, "pl"))
	require.NoError(t, entry.SetLanguage(second, "en"))

	fake.Advance(30 * time.Minute)
	require.NoError(t, resolver.Close(context.Background(), opened.ID, second))

	var stored domain.Conversation
	require.NoError(t, db.Where("primary_uuid = ?", opened.ID).Take(&stored).Error)
	require.NotNil(t, stored.EndTS)
	assert.WithinDuration(t, fake.Now(), *stored.EndTS, time.Second)
	assert.Equal(t, "pl", stored.SelectedLang)

	_, ok = reg.Get(opened.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, resolver.Close(context.Background(), opened.ID, first), domain.ErrClosed)
	assert.ErrorIs(t, resolver.Close(context.Background(), uuid.New(), first), domain.ErrNotFound)
}

func TestCloseRejectsNonParticipant(t *testing.T) {
	db := newTestDB(t)
	resolver, reg, _ := newResolver(t, db)
	owner := seedSession(t, db, uuid.New())
	stranger := seedSession(t, db, uuid.New())

	opened, err := resolver.JoinOrCreate(context.Background(), owner, uuid.New())
	require.NoError(t, err)

	err = resolver.Close(context.Background(), opened.ID, stranger)
	assert.ErrorIs(t, err, registry.ErrInconsistency)

	// The conversation is untouched.
	var stored domain.Conversation
	require.NoError(t, db.Where("primary_uuid = ?", opened.ID).Take(&stored).Error)
	assert.Nil(t, stored.EndTS)
	_, ok := reg.Get(opened.ID)
	assert.True(t, ok)
}

func TestSaveQuestionnaire(t *testing.T) {
	db := newTestDB(t)
	resolver, _, _ := newResolver(t, db)
	sessionID := seedSession(t, db, uuid.New())

	opened, err := resolver.JoinOrCreate(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)

	answers := map[string]interface{}{"helpful": true, "rating": float64(5)}
	require.NoError(t, resolver.SaveQuestionnaire(context.Background(), opened.ID, sessionID, answers))

	var stored domain.Conversation
	require.NoError(t, db.Where("primary_uuid = ?", opened.ID).Take(&stored).Error)
	assert.Equal(t, true, stored.Questionnaire["helpful"])

	err = resolver.SaveQuestionnaire(context.Background(), uuid.New(), sessionID, answers)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stranger := seedSession(t, db, uuid.New())
	err = resolver.SaveQuestionnaire(context.Background(), opened.ID, stranger, answers)
	assert.ErrorIs(t, err, registry.ErrInconsistency)
}
