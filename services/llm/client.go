package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNotConfigured is returned when no API key is available. Handlers map
// this to a 503 so operators know configuration, not the request, is the
// problem.
var ErrNotConfigured = errors.New("generation backend not configured")

// Message is one prior conversation turn passed to the model.
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Request describes a single generation call.
type Request struct {
	Model     string
	MaxTokens int
	System    string
	Messages  []Message
}

// Result is the completed generation with token accounting.
type Result struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	StopReason   string
}

// Client wraps the Anthropic SDK for the two proxy endpoints.
type Client struct {
	client     *anthropic.Client
	configured bool
}

// NewClient creates a client. An empty API key yields an unconfigured
// client whose calls fail with ErrNotConfigured rather than a construction
// error, so the server can still boot without credentials.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:     &client,
		configured: true,
	}
}

// Configured reports whether an API key was supplied
func (c *Client) Configured() bool {
	return c.configured
}

// Generate performs a one-shot completion and returns the full text.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	msg, err := c.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, err
	}

	text, err := extractText(msg)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:         text,
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
		StopReason:   string(msg.StopReason),
	}, nil
}

// Stream performs a streaming completion, invoking onChunk for each text
// fragment as it arrives. The assembled text is returned only when the
// stream finishes cleanly; a mid-stream failure returns the error and the
// partial text is discarded by the caller.
func (c *Client) Stream(ctx context.Context, req Request, onChunk func(chunk string) error) (*Result, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	stream := c.client.Messages.NewStreaming(ctx, buildParams(req))
	message := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, err
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				if err := onChunk(delta.Text); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	text, err := extractText(&message)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:         text,
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
		StopReason:   string(message.StopReason),
	}, nil
}

// UpstreamStatus maps a provider error to the HTTP status to pass through
// to the caller. Non-provider errors fall back to 500.
func UpstreamStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsUpstreamError reports whether err originated from the provider API
func IsUpstreamError(err error) bool {
	var apiErr *anthropic.Error
	return errors.As(err, &apiErr)
}

func buildParams(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  buildMessages(req.Messages),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	return params
}

func buildMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(msgs))
	for i, m := range msgs {
		role := anthropic.MessageParamRoleUser
		if m.Role == "assistant" {
			role = anthropic.MessageParamRoleAssistant
		}
		out[i] = anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(m.Content),
			},
		}
	}
	return out
}

func extractText(msg *anthropic.Message) (string, error) {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in model response")
}
