// Package completion talks to an Azure OpenAI chat-completion deployment.
package completion

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/varsilias/chat-relay/internal/apperr"
	"github.com/varsilias/chat-relay/pkg/types"
)

const (
	// DefaultAPIVersion is the Azure OpenAI REST API version sent as api-version.
	DefaultAPIVersion  = "2024-05-01-preview"
	DefaultMaxTokens   = 250
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

type Config struct {
	APIKey      string
	Endpoint    string
	Deployment  string
	APIVersion  string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	client openai.Client
	cfg    Config
	log    *zap.SugaredLogger
}

// NewClient builds a client for one deployment. Extra request options are
// applied after the Azure ones.
func NewClient(cfg Config, log *zap.SugaredLogger, opts ...option.RequestOption) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	reqOpts := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client: openai.NewClient(reqOpts...),
		cfg:    cfg,
		log:    log,
	}
}

// Deployment returns the configured deployment (model) name.
func (c *Client) Deployment() string { return c.cfg.Deployment }

// Complete submits the transcript and returns the first choice's text.
// Every error it returns matches apperr.ErrCompletion.
func (c *Client) Complete(ctx context.Context, transcript []types.Message) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Deployment),
		Messages:    toParams(transcript),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		Temperature: openai.Float(c.cfg.Temperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", latency, apperr.Wrap(apperr.ErrCompletionTimeout, err, "no reply within "+c.cfg.Timeout.String())
		}
		return "", latency, apperr.Wrap(apperr.ErrCompletion, err, "azure openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", latency, errors.WithStack(apperr.ErrNoChoices)
	}

	c.log.Debugw("completion",
		"deployment", c.cfg.Deployment,
		"messages", len(transcript),
		"latency_ms", latency.Milliseconds(),
		"finish_reason", resp.Choices[0].FinishReason,
	)
	return resp.Choices[0].Message.Content, latency, nil
}

func toParams(transcript []types.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
