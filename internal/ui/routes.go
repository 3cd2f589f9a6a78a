package ui

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/chat-relay/pkg/types"
)

func RegisterRoutes(mux chi.Router, h *UI) {
	mux.Get("/", h.Home)
	mux.Get("/history/{sessionID}", h.History)
}

// Home serves the chat page.
func (u *UI) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(u.index)
}

// History renders a read-only view of one session's transcript.
func (u *UI) History(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionID")
	msgs, ok := u.sessions.Get(sid)
	if !ok {
		http.NotFound(w, r)
		return
	}

	hist := make([]MsgView, 0, len(msgs))
	for _, m := range msgs {
		v := MsgView{Role: string(m.Role)}
		if m.Role == types.RoleAssistant {
			v.HTML = u.mdHTML(m.Content)
		} else {
			v.HTML = template.HTML(template.HTMLEscapeString(m.Content))
		}
		if !m.Timestamp.IsZero() {
			v.At = m.Timestamp.Format(time.RFC822)
		}
		hist = append(hist, v)
	}

	u.render(w, "history.html", map[string]any{
		"SessionID": sid,
		"History":   hist,
	}, http.StatusOK)
}
