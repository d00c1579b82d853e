package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

// Decision is the verdict a status callback returns for each observed run
// status, steering the poll cycle.
type Decision int

const (
	// DecisionContinue keeps the cycle running at its fixed cadence.
	DecisionContinue Decision = iota
	// DecisionSuccess terminates the cycle as a success.
	DecisionSuccess
	// DecisionFailure terminates the cycle as a business-level failure.
	DecisionFailure
)

// DecideByStatus is the default status classifier: completed terminates as
// success, failed/cancelled/expired as failure, everything else continues.
func DecideByStatus(status core.RunStatus) Decision {
	switch {
	case status.Succeeded():
		return DecisionSuccess
	case status.Terminal():
		return DecisionFailure
	default:
		return DecisionContinue
	}
}

// PollerOptions holds tuning parameters for a Poller.
type PollerOptions struct {
	// Interval is the fixed cadence between status checks.
	Interval time.Duration
	// MaxConsecutiveTransient bounds consecutive transient fetch errors
	// absorbed before the cycle escalates to a terminal failure.
	MaxConsecutiveTransient int
	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// DefaultPollerOptions mirror the steady-state cadence of the assistant API:
// one status check every two seconds, up to three consecutive transient
// errors absorbed per cycle.
var DefaultPollerOptions = PollerOptions{
	Interval:                2 * time.Second,
	MaxConsecutiveTransient: 3,
}

// Poller schedules run status checks at a fixed cadence until a terminal
// decision is reached. It owns its cycle's cancellation: starting a new cycle
// first cancels any still-running previous cycle, so a stale poll from a
// superseded run can never deliver results into the current lifecycle.
//
// Each tick performs exactly one status fetch. A transient error on a single
// tick does not terminate the loop, but MaxConsecutiveTransient consecutive
// errors escalate to a terminal failure so a dead network never polls
// silently forever. A protocol error is fatal on first sight and is never
// retried.
type Poller struct {
	transport core.Transport
	interval  time.Duration
	maxErrs   int
	logger    logging.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewPoller constructs a Poller with optional overrides.
func NewPoller(transport core.Transport, optFns ...func(o *PollerOptions)) *Poller {
	opts := DefaultPollerOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollerOptions.Interval
	}
	if opts.MaxConsecutiveTransient <= 0 {
		opts.MaxConsecutiveTransient = DefaultPollerOptions.MaxConsecutiveTransient
	}
	return &Poller{
		transport: transport,
		interval:  opts.Interval,
		maxErrs:   opts.MaxConsecutiveTransient,
		logger:    opts.Logger,
	}
}

// Poll runs one status cycle for the given run, blocking until onStatus
// returns a terminal decision, the cycle is cancelled or superseded, or a
// status check fails fatally. On a terminal decision it returns the final
// observed status; otherwise it returns a non-nil error: the context error
// for cancellation/supersession, a *core.ProtocolError immediately, or the
// transient cause once MaxConsecutiveTransient is exceeded.
func (p *Poller) Poll(ctx context.Context, threadID, runID string, onStatus func(core.RunStatus) Decision) (core.RunStatus, error) {
	cycleCtx, end := p.beginCycle(ctx)
	defer end()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	consecutive := 0
	ticks := 0
	started := time.Now()

	for {
		select {
		case <-cycleCtx.Done():
			return "", cycleCtx.Err()
		case <-ticker.C:
		}

		status, err := p.transport.GetRunStatus(cycleCtx, threadID, runID)
		ticks++
		if err != nil {
			if cycleCtx.Err() != nil {
				return "", cycleCtx.Err()
			}
			var protoErr *core.ProtocolError
			if errors.As(err, &protoErr) {
				p.logger.Warn("run status check rejected", "run_id", runID, "error", err)
				return "", err
			}
			consecutive++
			p.logger.Warn("run status check failed", "run_id", runID, "consecutive_errors", consecutive, "error", err)
			if consecutive >= p.maxErrs {
				if core.IsTransient(err) {
					return "", err
				}
				return "", &core.TransientError{Op: "get_run_status", Err: err}
			}
			continue
		}
		consecutive = 0
		p.logger.Debug("run status observed", "run_id", runID, "status", string(status), "tick", ticks)

		if d := onStatus(status); d != DecisionContinue {
			p.logCycleDone(runID, ticks, time.Since(started), status)
			return status, nil
		}
	}
}

// logCycleDone reports a finished cycle's aggregate metrics, routing through
// the logger's poll cycle helper when it carries one.
func (p *Poller) logCycleDone(runID string, ticks int, dur time.Duration, final core.RunStatus) {
	if cl, ok := p.logger.(interface {
		LogPollCycle(runID string, ticks int, dur time.Duration, final string)
	}); ok {
		cl.LogPollCycle(runID, ticks, dur, string(final))
		return
	}
	p.logger.Info("poll cycle finished", "run_id", runID, "ticks", ticks, "elapsed", dur, "final_status", string(final))
}

// Stop cancels the active cycle, if any. Safe to call concurrently and when
// no cycle is running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// beginCycle cancels any still-running cycle, installs the new one and
// returns its context plus a cleanup func. The generation counter ensures the
// cleanup never clears a cancel installed by a newer cycle.
func (p *Poller) beginCycle(ctx context.Context) (context.Context, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	p.gen++
	gen := p.gen
	p.cancel = cancel
	end := func() {
		p.mu.Lock()
		if p.gen == gen {
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}
	return cycleCtx, end
}
