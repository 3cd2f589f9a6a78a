package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/varsilias/chat-relay/internal/session"
)

func newRouter(t *testing.T) (http.Handler, *session.Store) {
	t.Helper()
	store := session.NewStore()
	u, err := New(zaptest.NewLogger(t).Sugar(), store)
	require.NoError(t, err)
	mux := chi.NewRouter()
	RegisterRoutes(mux, u)
	return mux, store
}

func TestHome(t *testing.T) {
	mux, _ := newRouter(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Azure AI Chatbot</title>")
	assert.Contains(t, body, "fetch('/chat'")
	assert.Contains(t, body, "Olá! Como posso ajudar?")
}

func TestHistory(t *testing.T) {
	mux, store := newRouter(t)
	store.AppendUser("s1", "<b>show</b> me code")
	store.AppendAssistant("s1", "Here:\n\n```go\nfmt.Println(\"hi\")\n```\n\n<script>alert(1)</script>")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/s1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Histórico da sessão s1")
	assert.Contains(t, body, "&lt;b&gt;show&lt;/b&gt; me code")
	assert.Contains(t, body, "<pre")
	assert.Contains(t, body, "Println")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestHistoryUnknownSession(t *testing.T) {
	mux, store := newRouter(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.List())
}
