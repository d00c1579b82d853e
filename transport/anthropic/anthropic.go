// Package anthropic implements core.Transport on top of the Anthropic
// Messages API. The Claude API has no server-side thread/run lifecycle, so
// this transport emulates one locally: threads are in-process message logs,
// and creating a run launches a single Messages API call over the accumulated
// conversation whose progress is reported through the usual run statuses.
// This gives the orchestrator a second, fully compatible backend.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

// Interface compliance (compile-time assertion)
var _ core.Transport = (*Client)(nil)

// Options configure the Anthropic transport (model id, token budget,
// temperature, API key, run timeout). Extend via functional options to
// preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// System is prepended to every run, standing in for the assistant
	// configuration the Assistants API keeps server-side.
	System string
	// RunTimeout bounds the emulated run's model call.
	RunTimeout time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Client emulates the thread/run lifecycle over the Anthropic Messages API.
// All state is process-local; it is safe for concurrent use.
type Client struct {
	client *anthropic.Client
	opts   Options
	logger logging.Logger

	mu      sync.Mutex
	threads map[string]*threadState
}

type threadState struct {
	created  time.Time
	messages []core.Message
	runs     map[string]*runState
}

type runState struct {
	status core.RunStatus
	err    error
}

// New creates a transport using the official client.
func New(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return newClient(&client, opts)
}

// NewFromClient creates a transport from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newClient(client, opts)
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		RunTimeout:  2 * time.Minute,
	}
}

func newClient(client *anthropic.Client, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 2 * time.Minute
	}
	return &Client{
		client:  client,
		opts:    opts,
		logger:  opts.Logger,
		threads: make(map[string]*threadState),
	}
}

// CreateThread allocates a new local thread.
func (c *Client) CreateThread(ctx context.Context) (core.Thread, error) {
	if err := ctx.Err(); err != nil {
		return core.Thread{}, &core.TransientError{Op: "create_thread", Err: err}
	}
	id := "thread_" + core.NewID()
	now := time.Now().UTC()
	c.mu.Lock()
	c.threads[id] = &threadState{created: now, runs: make(map[string]*runState)}
	c.mu.Unlock()
	return core.Thread{ID: id, CreatedAt: now}, nil
}

// AddMessage appends a user message to the thread log.
func (c *Client) AddMessage(ctx context.Context, threadID string, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return &core.TransientError{Op: "add_message", Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	th, ok := c.threads[threadID]
	if !ok {
		return &core.ProtocolError{Op: "add_message", Err: fmt.Errorf("unknown thread %s", threadID)}
	}
	stored := msg
	stored.ThreadID = threadID
	stored.Delivery = core.DeliveryConfirmed
	if stored.ID == "" {
		stored.ID = "msg_" + core.NewID()
	}
	th.messages = append(th.messages, stored)
	return nil
}

// CreateRun starts the emulated run: a goroutine performs one Messages API
// call over the accumulated conversation and records the reply on the thread
// log. The run is detached from the caller's context, matching the remote
// API's fire-and-poll semantics; it is bounded by RunTimeout instead.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (core.Run, error) {
	if err := ctx.Err(); err != nil {
		return core.Run{}, &core.TransientError{Op: "create_run", Err: err}
	}
	c.mu.Lock()
	th, ok := c.threads[threadID]
	if !ok {
		c.mu.Unlock()
		return core.Run{}, &core.ProtocolError{Op: "create_run", Err: fmt.Errorf("unknown thread %s", threadID)}
	}
	runID := "run_" + core.NewID()
	rs := &runState{status: core.RunQueued}
	th.runs[runID] = rs
	params := c.buildParams(th.messages)
	c.mu.Unlock()

	go c.execute(threadID, runID, params)

	return core.Run{ID: runID, ThreadID: threadID, AssistantID: assistantID, Status: core.RunQueued}, nil
}

// GetRunStatus reports the emulated run's progress.
func (c *Client) GetRunStatus(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", &core.TransientError{Op: "get_run_status", Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	th, ok := c.threads[threadID]
	if !ok {
		return "", &core.ProtocolError{Op: "get_run_status", Err: fmt.Errorf("unknown thread %s", threadID)}
	}
	rs, ok := th.runs[runID]
	if !ok {
		return "", &core.ProtocolError{Op: "get_run_status", Err: fmt.Errorf("unknown run %s", runID)}
	}
	return rs.status, nil
}

// ListMessages returns a copy of the thread log in insertion order.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.TransientError{Op: "list_messages", Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	th, ok := c.threads[threadID]
	if !ok {
		return nil, &core.ProtocolError{Op: "list_messages", Err: fmt.Errorf("unknown thread %s", threadID)}
	}
	out := make([]core.Message, len(th.messages))
	copy(out, th.messages)
	return out, nil
}

// execute performs the model call backing one emulated run and records the
// outcome on the thread log.
func (c *Client) execute(threadID, runID string, params anthropic.MessageNewParams) {
	c.setStatus(threadID, runID, core.RunInProgress, nil)

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RunTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if tl, ok := c.logger.(interface {
		LogTransportCall(op string, dur time.Duration, err error)
	}); ok {
		tl.LogTransportCall("messages_new", time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("emulated run failed", "thread_id", threadID, "run_id", runID, "error", err)
		c.setStatus(threadID, runID, core.RunFailed, fmt.Errorf("anthropic api error: %w", err))
		return
	}

	var parts []core.Part
	for _, block := range resp.Content {
		if block.Type == "text" {
			text := block.AsText()
			if text.Text != "" {
				parts = append(parts, core.TextPart{Text: text.Text})
			}
		}
	}
	reply := core.Message{
		ID:        "msg_" + core.NewID(),
		ThreadID:  threadID,
		Role:      core.RoleAssistant,
		CreatedAt: time.Now().UTC(),
		RunID:     runID,
		Delivery:  core.DeliveryConfirmed,
		Content:   parts,
	}

	c.mu.Lock()
	if th, ok := c.threads[threadID]; ok {
		th.messages = append(th.messages, reply)
		if rs, ok := th.runs[runID]; ok {
			rs.status = core.RunCompleted
		}
	}
	c.mu.Unlock()
}

func (c *Client) setStatus(threadID, runID string, status core.RunStatus, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	th, ok := c.threads[threadID]
	if !ok {
		return
	}
	if rs, ok := th.runs[runID]; ok {
		rs.status = status
		rs.err = err
	}
}

// buildParams converts the thread log into Anthropic message format. Caller
// holds the lock.
func (c *Client) buildParams(messages []core.Message) anthropic.MessageNewParams {
	var converted []anthropic.MessageParam
	for _, m := range messages {
		text := m.Text()
		if text == "" {
			continue
		}
		switch m.Role {
		case core.RoleUser:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		case core.RoleAssistant:
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		}
	}
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		Messages:    converted,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
	}
	if c.opts.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.opts.System}}
	}
	return params
}

// RunError returns the recorded failure of an emulated run, if any. Useful
// for diagnostics beyond the status the orchestrator polls.
func (c *Client) RunError(threadID, runID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	th, ok := c.threads[threadID]
	if !ok {
		return errors.New("unknown thread")
	}
	rs, ok := th.runs[runID]
	if !ok {
		return errors.New("unknown run")
	}
	return rs.err
}
