package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/varsilias/chat-relay/pkg/types"
)

// Completer produces the next assistant turn for a transcript.
type Completer interface {
	Complete(ctx context.Context, transcript []types.Message) (text string, latency time.Duration, err error)
}

// EchoCompleter answers with the last user message. It never calls out.
type EchoCompleter struct {
	minLatency time.Duration
}

func NewEchoCompleter(minLatency time.Duration) *EchoCompleter {
	return &EchoCompleter{minLatency: minLatency}
}

func (e *EchoCompleter) Complete(ctx context.Context, transcript []types.Message) (string, time.Duration, error) {
	start := time.Now()
	if e.minLatency > 0 {
		select {
		case <-time.After(e.minLatency):
		case <-ctx.Done():
			return "", time.Since(start), ctx.Err()
		}
	}
	var prompt string
	if last, ok := types.Transcript(transcript).Last(); ok {
		prompt = last.Content
	}
	return fmt.Sprintf("(demo) you said: %s", prompt), time.Since(start), nil
}
