package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	textdomain "github.com/parleyhq/parley/internal/text/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsDuplicate(t *testing.T) {
	r := New()
	id := uuid.New()

	_, err := r.Create(id)
	require.NoError(t, err)

	_, err = r.Create(id)
	assert.ErrorIs(t, err, ErrAlreadyTracked)
}

func TestEnsureReturnsSameEntry(t *testing.T) {
	r := New()
	id := uuid.New()

	first := r.Ensure(id)
	second := r.Ensure(id)
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterFillsSlotsInOrder(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.Register(b))
	assert.Equal(t, SlotFirst, entry.SlotOf(a))
	assert.Equal(t, SlotSecond, entry.SlotOf(b))

	// Re-registering is a no-op, a third participant is rejected.
	require.NoError(t, entry.Register(a))
	assert.ErrorIs(t, entry.Register(c), ErrFull)
	assert.Equal(t, SlotUnknown, entry.SlotOf(c))
}

func TestLanguageBookkeeping(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b := uuid.New(), uuid.New()
	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.Register(b))

	require.NoError(t, entry.SetLanguage(a, "en"))
	require.NoError(t, entry.SetLanguage(b, "de"))

	lang, err := entry.LanguageOf(a)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	other, err := entry.InterlocutorLanguage(a)
	require.NoError(t, err)
	assert.Equal(t, "de", other)

	peer, err := entry.InterlocutorSession(b)
	require.NoError(t, err)
	assert.Equal(t, a, peer)

	// Both sides may pick the same language.
	require.NoError(t, entry.SetLanguage(b, "en"))
	other, err = entry.InterlocutorLanguage(a)
	require.NoError(t, err)
	assert.Equal(t, "en", other)
}

func TestStrangerSessionIsInconsistent(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, stranger := uuid.New(), uuid.New()
	require.NoError(t, entry.Register(a))

	assert.ErrorIs(t, entry.SetLanguage(stranger, "en"), ErrInconsistency)
	_, err := entry.LanguageOf(stranger)
	assert.ErrorIs(t, err, ErrInconsistency)
	_, err = entry.InterlocutorSession(stranger)
	assert.ErrorIs(t, err, ErrInconsistency)
	_, err = entry.Dequeue(stranger)
	assert.ErrorIs(t, err, ErrInconsistency)
	assert.ErrorIs(t, entry.Enqueue(stranger, &textdomain.Text{}), ErrInconsistency)
}

func TestReadyToStartIsMonotonic(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b := uuid.New(), uuid.New()

	assert.False(t, entry.ReadyToStart())
	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.SetLanguage(a, "en"))
	assert.False(t, entry.ReadyToStart())

	require.NoError(t, entry.Register(b))
	assert.False(t, entry.ReadyToStart())
	require.NoError(t, entry.SetLanguage(b, "uk"))
	assert.True(t, entry.ReadyToStart())

	// Changing a language keeps the conversation ready.
	require.NoError(t, entry.SetLanguage(b, "de"))
	assert.True(t, entry.ReadyToStart())
}

func TestDequeueIsFIFOAndExactlyOnce(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b := uuid.New(), uuid.New()
	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.Register(b))

	first := &textdomain.Text{ID: uuid.New(), Translated: "one"}
	second := &textdomain.Text{ID: uuid.New(), Translated: "two"}
	require.NoError(t, entry.Enqueue(b, first))
	require.NoError(t, entry.Enqueue(b, second))

	got, err := entry.Dequeue(b)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = entry.Dequeue(b)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	got, err = entry.Dequeue(b)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The other participant's queue is independent.
	got, err = entry.Dequeue(a)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConcurrentDequeueDeliversEachMessageOnce(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b := uuid.New(), uuid.New()
	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.Register(b))

	const total = 200
	for i := 0; i < total; i++ {
		require.NoError(t, entry.Enqueue(b, &textdomain.Text{ID: uuid.New(), Text: fmt.Sprintf("m%d", i)}))
	}

	var mu sync.Mutex
	seen := make(map[uuid.UUID]int)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				msg, err := entry.Dequeue(b)
				if err != nil || msg == nil {
					return
				}
				mu.Lock()
				seen[msg.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "message %s delivered %d times", id, count)
	}
}

func TestDrainEmptiesQueueInOrder(t *testing.T) {
	r := New()
	entry := r.Ensure(uuid.New())
	a, b := uuid.New(), uuid.New()
	require.NoError(t, entry.Register(a))
	require.NoError(t, entry.Register(b))

	for i := 0; i < 3; i++ {
		require.NoError(t, entry.Enqueue(a, &textdomain.Text{ID: uuid.New(), Text: fmt.Sprintf("m%d", i)}))
	}
	drained, err := entry.Drain(a)
	require.NoError(t, err)
	require.Len(t, drained, 3)
	assert.Equal(t, "m0", drained[0].Text)
	assert.Equal(t, "m2", drained[2].Text)

	again, err := entry.Drain(a)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRemoveForgetsEntry(t *testing.T) {
	r := New()
	id := uuid.New()
	r.Ensure(id)
	r.Remove(id)

	_, ok := r.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}
