// Package openai implements core.Transport against the OpenAI Assistants v2
// API (threads, messages, runs) using the official client. It adapts the
// SDK's message format into OpenAssistant's normalized Message structure and
// classifies SDK failures into the transient/protocol error taxonomy the
// orchestrator relies on.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
)

// Interface compliance (compile-time assertion)
var _ core.Transport = (*Client)(nil)

// Options configure the OpenAI transport. Fields intentionally kept minimal;
// extend via functional options without breaking callers.
type Options struct {
	// PageLimit caps messages fetched per list page.
	PageLimit int64
}

// Client wraps the OpenAI Assistants API behind the core.Transport interface.
// Authentication and per-request retry/backoff are the SDK's responsibility.
type Client struct {
	client *openai.Client
	opts   Options
}

// New creates a transport using the official client with default
// configuration (API key from the environment).
func New(optFns ...func(o *Options)) *Client {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a transport from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		PageLimit: 100,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// CreateThread creates a new remote conversation thread.
func (c *Client) CreateThread(ctx context.Context) (core.Thread, error) {
	thread, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return core.Thread{}, classify("create_thread", err)
	}
	if thread.ID == "" {
		return core.Thread{}, &core.ProtocolError{Op: "create_thread", Err: errors.New("empty thread id in response")}
	}
	return core.Thread{ID: thread.ID, CreatedAt: time.Unix(thread.CreatedAt, 0)}, nil
}

// AddMessage submits a user message to the thread. File parts are attached by
// id; text parts are concatenated into the message body.
func (c *Client) AddMessage(ctx context.Context, threadID string, msg core.Message) error {
	params := openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(msg.Text()),
		},
	}
	for _, p := range msg.Content {
		if fp, ok := p.(core.FilePart); ok {
			params.Attachments = append(params.Attachments, openai.BetaThreadMessageNewParamsAttachment{
				FileID: openai.String(fp.FileID),
			})
		}
	}
	if _, err := c.client.Beta.Threads.Messages.New(ctx, threadID, params); err != nil {
		return classify("add_message", err)
	}
	return nil
}

// CreateRun starts a new run of the assistant over the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (core.Run, error) {
	run, err := c.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return core.Run{}, classify("create_run", err)
	}
	if run.ID == "" {
		return core.Run{}, &core.ProtocolError{Op: "create_run", Err: errors.New("empty run id in response")}
	}
	return core.Run{
		ID:          run.ID,
		ThreadID:    threadID,
		AssistantID: assistantID,
		Status:      core.RunStatus(run.Status),
	}, nil
}

// GetRunStatus fetches the current status of a run.
func (c *Client) GetRunStatus(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	run, err := c.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return "", classify("get_run_status", err)
	}
	status := core.RunStatus(run.Status)
	if status == "" {
		return "", &core.ProtocolError{Op: "get_run_status", Err: errors.New("empty status in response")}
	}
	return status, nil
}

// ListMessages returns all messages of the thread in creation order,
// following pagination.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]core.Message, error) {
	iter := c.client.Beta.Threads.Messages.ListAutoPaging(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderAsc,
		Limit: openai.Int(c.opts.PageLimit),
	})

	var out []core.Message
	for iter.Next() {
		m := iter.Current()
		out = append(out, convertMessage(threadID, m))
	}
	if err := iter.Err(); err != nil {
		return nil, classify("list_messages", err)
	}
	return out, nil
}

// convertMessage adapts an SDK message into the normalized form, preserving
// content block order.
func convertMessage(threadID string, m openai.Message) core.Message {
	var parts []core.Part
	for _, block := range m.Content {
		switch block.Type {
		case "text":
			text := block.AsText()
			parts = append(parts, core.TextPart{Text: text.Text.Value})
		case "image_file":
			img := block.AsImageFile()
			parts = append(parts, core.FilePart{FileID: img.ImageFile.FileID})
		}
	}
	return core.Message{
		ID:        m.ID,
		ThreadID:  threadID,
		Role:      core.Role(m.Role),
		CreatedAt: time.Unix(m.CreatedAt, 0),
		RunID:     m.RunID,
		Delivery:  core.DeliveryConfirmed,
		Content:   parts,
	}
}

// classify maps SDK errors onto the transport error taxonomy: rate limits,
// timeouts and server-side failures are transient; other API rejections are
// protocol errors; anything else (DNS, connection reset) is a network-level
// transient failure.
func classify(op string, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests,
			apierr.StatusCode == http.StatusRequestTimeout,
			apierr.StatusCode >= http.StatusInternalServerError:
			return &core.TransientError{Op: op, Err: err}
		default:
			return &core.ProtocolError{Op: op, Err: fmt.Errorf("openai api error: %w", err)}
		}
	}
	return &core.TransientError{Op: op, Err: err}
}
