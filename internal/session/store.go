package session

import (
	"context"
	"sync"
	"time"

	"github.com/varsilias/chat-relay/pkg/types"
)

const (
	// DefaultMaxLen bounds a transcript: the system message plus nine turns.
	DefaultMaxLen = 10

	// DefaultSystemPrompt seeds every new transcript.
	DefaultSystemPrompt = "Você é um assistente de IA prestativo e direto ao ponto."

	// DefaultSessionID is used when a caller does not name a session.
	DefaultSessionID = "default"
)

// Store maps session ids to bounded transcripts. Transcripts are created
// lazily, seeded with the system message, and live as long as the Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*transcript

	system string
	maxLen int
	now    func() time.Time
}

type transcript struct {
	// turn is held for a whole user/assistant exchange.
	turn chan struct{}

	mu      sync.Mutex
	msgs    types.Transcript
	updated time.Time
}

type Option func(*Store)

func WithSystemPrompt(prompt string) Option {
	return func(s *Store) { s.system = prompt }
}

// WithMaxLen sets the retention bound. Values below 2 keep the default.
func WithMaxLen(n int) Option {
	return func(s *Store) {
		if n >= 2 {
			s.maxLen = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*transcript),
		system:   DefaultSystemPrompt,
		maxLen:   DefaultMaxLen,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxLen reports the retention bound in messages, system message included.
func (s *Store) MaxLen() int { return s.maxLen }

func (s *Store) lookup(sessionID string) (*transcript, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.sessions[sessionID]
	return t, ok
}

func (s *Store) entry(sessionID string) *transcript {
	t, ok := s.lookup(sessionID)
	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok = s.sessions[sessionID]; ok {
		return t
	}
	now := s.now()
	t = &transcript{
		turn:    make(chan struct{}, 1),
		msgs:    types.Transcript{{Role: types.RoleSystem, Content: s.system, Timestamp: now}},
		updated: now,
	}
	s.sessions[sessionID] = t
	return t
}

// GetOrCreate returns a copy of the session transcript, creating it on first use.
func (s *Store) GetOrCreate(sessionID string) types.Transcript {
	t := s.entry(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.msgs)
}

// Get returns a copy of an existing transcript without creating one.
func (s *Store) Get(sessionID string) (types.Transcript, bool) {
	t, ok := s.lookup(sessionID)
	if !ok {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.msgs), true
}

// AppendUser adds a user turn and returns the transcript to submit.
// Callers reject empty text before getting here.
func (s *Store) AppendUser(sessionID, text string) types.Transcript {
	t := s.entry(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, types.Message{Role: types.RoleUser, Content: text, Timestamp: s.now()})
	t.updated = s.now()
	return clone(t.msgs)
}

// AppendAssistant records a reply and applies retention. Unknown sessions
// are left alone.
func (s *Store) AppendAssistant(sessionID, text string) {
	t, ok := s.lookup(sessionID)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, types.Message{Role: types.RoleAssistant, Content: text, Timestamp: s.now()})
	t.msgs = trim(t.msgs, s.maxLen)
	t.updated = s.now()
}

// RollbackLastUser drops the last message when it is an unanswered user turn.
func (s *Store) RollbackLastUser(sessionID string) {
	t, ok := s.lookup(sessionID)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.msgs.Last(); ok && last.Role == types.RoleUser {
		t.msgs = t.msgs[:len(t.msgs)-1]
	}
}

// Acquire takes the session's turn lock. The returned release must be called
// once the exchange has been committed or rolled back.
func (s *Store) Acquire(ctx context.Context, sessionID string) (func(), error) {
	t := s.entry(sessionID)
	select {
	case t.turn <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() { once.Do(func() { <-t.turn }) }, nil
}

// trim keeps the system message plus the newest maxLen-1 messages.
func trim(msgs types.Transcript, maxLen int) types.Transcript {
	if len(msgs) <= maxLen {
		return msgs
	}
	out := make(types.Transcript, 0, maxLen)
	out = append(out, msgs[0])
	return append(out, msgs[len(msgs)-(maxLen-1):]...)
}

func clone(msgs types.Transcript) types.Transcript {
	out := make(types.Transcript, len(msgs))
	copy(out, msgs)
	return out
}
