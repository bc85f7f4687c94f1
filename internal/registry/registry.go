// Package registry holds the per-process runtime view of open
// conversations: which sessions occupy the two slots, which language each
// side picked, and the per-recipient queues of not-yet-delivered messages.
// It is a volatile cache over the durable rows; entries for conversations
// closed elsewhere are stale and must never be trusted without re-reading
// the durable record.
package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	textdomain "github.com/parleyhq/parley/internal/text/domain"
	"go.uber.org/fx"
)

var (
	ErrAlreadyTracked = errors.New("conversation_already_tracked")
	ErrNotTracked     = errors.New("conversation_not_tracked")
	ErrFull           = errors.New("conversation_full")
	// ErrInconsistency means a session id matched neither slot of the
	// addressed conversation. Protocol error, fatal to the request.
	ErrInconsistency = errors.New("registry_inconsistency")
)

// Slot identifies which side of a conversation a session occupies.
type Slot int

const (
	SlotUnknown Slot = iota
	SlotFirst
	SlotSecond
)

func (s Slot) String() string {
	switch s {
	case SlotFirst:
		return "first"
	case SlotSecond:
		return "second"
	default:
		return "unknown"
	}
}

// Module provides the registry as an injected service, never a package
// singleton.
var Module = fx.Provide(New)

// Registry is the process-wide map of live conversations. Two participants
// may mutate the same entry concurrently; each entry carries its own mutex.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
}

func New() *Registry {
	return &Registry{entries: make(map[uuid.UUID]*Entry)}
}

// Create inserts a fresh entry. Callers must check Get first; a second
// Create for the same id fails.
func (r *Registry) Create(conversationID uuid.UUID) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[conversationID]; ok {
		return nil, ErrAlreadyTracked
	}
	entry := &Entry{
		conversationID: conversationID,
		queues:         make(map[uuid.UUID][]*textdomain.Text),
	}
	r.entries[conversationID] = entry
	return entry, nil
}

func (r *Registry) Get(conversationID uuid.UUID) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[conversationID]
	return entry, ok
}

// Ensure returns the existing entry or creates one, for rehydration after a
// process restart.
func (r *Registry) Ensure(conversationID uuid.UUID) *Entry {
	r.mu.RLock()
	entry, ok := r.entries[conversationID]
	r.mu.RUnlock()
	if ok {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok = r.entries[conversationID]
	if !ok {
		entry = &Entry{
			conversationID: conversationID,
			queues:         make(map[uuid.UUID][]*textdomain.Text),
		}
		r.entries[conversationID] = entry
	}
	return entry
}

func (r *Registry) Remove(conversationID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, conversationID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entry is the runtime state of one conversation.
type Entry struct {
	mu             sync.Mutex
	conversationID uuid.UUID

	first      uuid.UUID
	second     uuid.UUID
	firstLang  string
	secondLang string

	// Undelivered messages keyed by recipient session. FIFO per recipient,
	// consumed exactly once, lost on process restart (the durable texts
	// table remains the authoritative history).
	queues map[uuid.UUID][]*textdomain.Text
}

func (e *Entry) ConversationID() uuid.UUID { return e.conversationID }

// Register puts the session into the first free slot. Registering a session
// already present is a no-op.
func (e *Entry) Register(sessionID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.first == sessionID || e.second == sessionID:
		return nil
	case e.first == uuid.Nil:
		e.first = sessionID
	case e.second == uuid.Nil:
		e.second = sessionID
	default:
		return ErrFull
	}
	return nil
}

func (e *Entry) SlotOf(sessionID uuid.UUID) Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slotOf(sessionID)
}

func (e *Entry) slotOf(sessionID uuid.UUID) Slot {
	switch sessionID {
	case e.first:
		if e.first == uuid.Nil {
			return SlotUnknown
		}
		return SlotFirst
	case e.second:
		if e.second == uuid.Nil {
			return SlotUnknown
		}
		return SlotSecond
	default:
		return SlotUnknown
	}
}

// SetLanguage records the language for the session's slot. Re-setting the
// same value is idempotent; matching the counterpart's language is allowed.
func (e *Entry) SetLanguage(sessionID uuid.UUID, lang string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.slotOf(sessionID) {
	case SlotFirst:
		e.firstLang = lang
	case SlotSecond:
		e.secondLang = lang
	default:
		return ErrInconsistency
	}
	return nil
}

func (e *Entry) LanguageOf(sessionID uuid.UUID) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.slotOf(sessionID) {
	case SlotFirst:
		return e.firstLang, nil
	case SlotSecond:
		return e.secondLang, nil
	default:
		return "", ErrInconsistency
	}
}

// InterlocutorLanguage returns the language picked by the other side; empty
// until they pick one.
func (e *Entry) InterlocutorLanguage(sessionID uuid.UUID) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.slotOf(sessionID) {
	case SlotFirst:
		return e.secondLang, nil
	case SlotSecond:
		return e.firstLang, nil
	default:
		return "", ErrInconsistency
	}
}

// InterlocutorSession returns the other slot's session id; uuid.Nil while
// the conversation is unpaired.
func (e *Entry) InterlocutorSession(sessionID uuid.UUID) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.slotOf(sessionID) {
	case SlotFirst:
		return e.second, nil
	case SlotSecond:
		return e.first, nil
	default:
		return uuid.Nil, ErrInconsistency
	}
}

// FirstLanguage is the close-time summary value for the legacy
// selected_lang column.
func (e *Entry) FirstLanguage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstLang
}

// ReadyToStart holds iff both session slots and both language slots are
// non-empty. Slots are never cleared, so readiness is monotonic.
func (e *Entry) ReadyToStart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.first != uuid.Nil && e.second != uuid.Nil && e.firstLang != "" && e.secondLang != ""
}

// Enqueue appends a message to the recipient's delivery queue.
func (e *Entry) Enqueue(recipientSessionID uuid.UUID, message *textdomain.Text) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slotOf(recipientSessionID) == SlotUnknown {
		return ErrInconsistency
	}
	e.queues[recipientSessionID] = append(e.queues[recipientSessionID], message)
	return nil
}

// Dequeue pops the oldest undelivered message for the recipient, or nil.
// A message returned once is never returned again.
func (e *Entry) Dequeue(recipientSessionID uuid.UUID) (*textdomain.Text, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slotOf(recipientSessionID) == SlotUnknown {
		return nil, ErrInconsistency
	}
	queue := e.queues[recipientSessionID]
	if len(queue) == 0 {
		return nil, nil
	}
	message := queue[0]
	e.queues[recipientSessionID] = queue[1:]
	return message, nil
}

// Drain pops every queued message for the recipient in enqueue order.
func (e *Entry) Drain(recipientSessionID uuid.UUID) ([]*textdomain.Text, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slotOf(recipientSessionID) == SlotUnknown {
		return nil, ErrInconsistency
	}
	queue := e.queues[recipientSessionID]
	e.queues[recipientSessionID] = nil
	return queue, nil
}
