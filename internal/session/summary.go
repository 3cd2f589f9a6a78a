package session

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/varsilias/chat-relay/pkg/types"
)

// Summary is a lightweight view of one session.
type Summary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages int       `json:"messages"`
	Updated  time.Time `json:"updated"`
}

// List returns summaries for every known session, in no particular order.
func (s *Store) List() []Summary {
	s.mu.RLock()
	entries := lo.Entries(s.sessions)
	s.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		t := e.Value
		t.mu.Lock()
		out = append(out, Summary{ID: e.Key, Title: titleFrom(t.msgs), Messages: len(t.msgs), Updated: t.updated})
		t.mu.Unlock()
	}
	return out
}

func titleFrom(msgs types.Transcript) string {
	first, ok := lo.Find(msgs, func(m types.Message) bool { return m.Role == types.RoleUser })
	if !ok {
		return ""
	}
	return clip(words(first.Content), 8)
}

func words(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	parts := strings.Fields(s)
	if len(parts) <= 12 {
		return s
	}
	return strings.Join(parts[:12], " ")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n*2 {
		return s
	}
	return string(r[:n*2]) + "…"
}
