package chat

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/varsilias/chat-relay/internal/apperr"
	"github.com/varsilias/chat-relay/internal/session"
	"github.com/varsilias/chat-relay/pkg/types"
)

type Controller struct {
	log      *zap.SugaredLogger
	comp     Completer
	sessions *session.Store
}

func NewController(log *zap.SugaredLogger, comp Completer, store *session.Store) *Controller {
	return &Controller{log: log, comp: comp, sessions: store}
}

// Chat runs one exchange under the session's turn lock: record the user
// turn, ask the completer, then either keep the reply or roll the user turn
// back.
func (c *Controller) Chat(ctx context.Context, sessionID, text string) (types.Message, time.Duration, error) {
	if text == "" {
		return types.Message{}, 0, apperr.ErrEmptyInput
	}
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}

	release, err := c.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return types.Message{}, 0, apperr.Wrap(apperr.ErrCompletion, err, "waiting for session turn")
	}
	defer release()

	transcript := c.sessions.AppendUser(sessionID, text)

	reply, latency, err := c.comp.Complete(ctx, transcript)
	if err != nil {
		c.sessions.RollbackLastUser(sessionID)
		c.log.Errorw("completion failed",
			"session_id", sessionID,
			"timeout", errors.Is(err, apperr.ErrCompletionTimeout),
			"latency_ms", latency.Milliseconds(),
			"error", err,
		)
		if !errors.Is(err, apperr.ErrCompletion) {
			err = apperr.Wrap(apperr.ErrCompletion, err, "completer")
		}
		return types.Message{}, latency, err
	}

	c.sessions.AppendAssistant(sessionID, reply)
	c.log.Debugw("chat", "session_id", sessionID, "latency_ms", latency.Milliseconds())
	return types.Message{Role: types.RoleAssistant, Content: reply, Timestamp: time.Now()}, latency, nil
}
