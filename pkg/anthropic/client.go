// Package anthropic wraps the Anthropic Messages API behind a small
// interface so callers can be tested without the network.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client asks single-turn questions of a Claude model.
type Client interface {
	Ask(ctx context.Context, req Request) (*Response, error)
}

// Request is one system prompt plus one user prompt.
type Request struct {
	Model     string
	MaxTokens int64
	System    string
	// CacheTTL puts a cache breakpoint on the system prompt ("5m" or "1h").
	// Empty sends the system prompt uncached.
	CacheTTL string
	Prompt   string
}

// Response is the joined text answer and its token usage.
type Response struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      Usage
}

// Truncated reports whether the model stopped on the token limit.
func (r *Response) Truncated() bool {
	return r.StopReason == string(sdk.StopReasonMaxTokens)
}

// Usage counts the tokens billed for one request.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
}

// haikuPricing is input/output USD per million tokens for the advisor's
// default model. Other models are not priced.
var haikuPricing = struct{ in, out float64 }{0.80, 4.00}

// CostUSD estimates the request cost. Cache writes bill at 1.25x input and
// cache reads at 0.1x input.
func (u Usage) CostUSD(model string) float64 {
	if !strings.HasPrefix(model, "claude-haiku-4-5") {
		return 0
	}
	in := float64(u.InputTokens) + 1.25*float64(u.CacheWriteTokens) + 0.1*float64(u.CacheReadTokens)
	return (in*haikuPricing.in + float64(u.OutputTokens)*haikuPricing.out) / 1e6
}

// Log records usage and estimated cost for one advisor call.
func (u Usage) Log(model, farmID string) {
	zap.L().Info("anthropic: token usage",
		zap.String("model", model),
		zap.String("farm_id", farmID),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadTokens),
		zap.Float64("estimated_cost_usd", u.CostUSD(model)),
	)
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates a Client backed by the SDK. Extra request options (base
// URL, retries) are passed through.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	return &sdkClient{
		client: sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
	}
}

func (c *sdkClient) Ask(ctx context.Context, req Request) (*Response, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{systemBlock(req.System, req.CacheTTL)}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: ask")
	}
	return toResponse(msg), nil
}

func systemBlock(text, ttl string) sdk.TextBlockParam {
	block := sdk.TextBlockParam{Text: text}
	if ttl != "" {
		cc := sdk.NewCacheControlEphemeralParam()
		cc.TTL = sdk.CacheControlEphemeralTTL(ttl)
		block.CacheControl = cc
	}
	return block
}

func toResponse(msg *sdk.Message) *Response {
	var parts []string
	for _, b := range msg.Content {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return &Response{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Text:       strings.Join(parts, "\n"),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:      msg.Usage.InputTokens,
			OutputTokens:     msg.Usage.OutputTokens,
			CacheWriteTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadTokens:  msg.Usage.CacheReadInputTokens,
		},
	}
}

// StatusCode returns the HTTP status of an API error anywhere in err's chain,
// or 0 when err did not come from an API response.
func StatusCode(err error) int {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
