// Package anthropic wraps the official SDK behind the single operation the
// recommendation pipeline uses: polishing the deterministic top-pick
// writeup into friendlier prose. The feature is optional; pipelines run
// identically without a configured client.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client defines the Anthropic API operations used by the pipeline.
type Client interface {
	PolishWriteup(ctx context.Context, draft string) (string, error)
}

// Config holds client settings.
type Config struct {
	APIKey            string
	Model             string
	MaxTokens         int64
	RequestsPerMinute int
}

const systemPrompt = "You are a real estate assistant. Rewrite the " +
	"property summary below as warm, concise prose for a home buyer. Keep " +
	"every number and fact exactly as given. Do not add information."

// sdkClient implements Client using the official anthropic-sdk-go with a
// client-side rate limiter.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(cfg Config) Client {
	model := cfg.Model
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(cfg.APIKey),
		),
		model:     model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
	}
}

func (c *sdkClient) PolishWriteup(ctx context.Context, draft string) (string, error) {
	if draft == "" {
		return "", eris.New("anthropic: empty draft")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "anthropic: rate limit wait")
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(draft)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", eris.New("anthropic: empty response")
	}

	zap.L().Debug("writeup polished",
		zap.String("model", c.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return text, nil
}
