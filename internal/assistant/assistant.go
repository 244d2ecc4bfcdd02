// Package assistant drives one user turn through the model and the tool
// registry until a final answer comes out. Every terminal state, success or
// failure, hands a user-visible sentence back to the caller; the shell is
// never left waiting.
package assistant

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vivekps/nexus/internal/conversation"
	"github.com/vivekps/nexus/internal/observability"
	"github.com/vivekps/nexus/internal/tools"
)

// Outcome classifies how a turn ended.
type Outcome string

const (
	OutcomeDone          Outcome = "done"
	OutcomeDisabled      Outcome = "disabled"
	OutcomeEndpointError Outcome = "endpoint_error"
	OutcomeImageError    Outcome = "image_error"
	OutcomeBoundExceeded Outcome = "bound_exceeded"
)

// User-facing messages for the failure states.
const (
	disabledReply = "I am sorry, my core AI brain is not active. Please check the API key."
	endpointReply = "I am sorry, I had trouble reaching my language model. Please try again."
	boundReply    = "I got stuck repeatedly using my tools and could not finish that request. Please try rephrasing."
	emptyReply    = "I'm not sure how to respond to that."
)

// Notifier receives the synchronous "using tool X" lines before each tool
// batch executes. This is part of the UX contract, not telemetry.
type Notifier func(notice string)

type Assistant struct {
	registry  *tools.Registry
	logger    *zap.Logger
	metrics   *observability.Metrics
	enabled   bool
	maxRounds int
	timeout   time.Duration
}

// Config assembles an Assistant. Enabled=false puts it in the degraded
// "AI disabled" mode where turns answer immediately without an endpoint call.
type Config struct {
	Registry  *tools.Registry
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Enabled   bool
	MaxRounds int
	Timeout   time.Duration
}

func New(cfg Config) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 8
	}
	return &Assistant{
		registry:  cfg.Registry,
		logger:    logger,
		metrics:   cfg.Metrics,
		enabled:   cfg.Enabled,
		maxRounds: maxRounds,
		timeout:   cfg.Timeout,
	}
}

// Enabled reports whether the model endpoint is configured.
func (a *Assistant) Enabled() bool { return a.enabled }

// RunTurn takes raw user input, resolves any attached image, and drives the
// dispatch/check/announce/execute/feed-back cycle to a terminal state. The
// returned text is always displayable.
func (a *Assistant) RunTurn(ctx context.Context, sess *conversation.Session, input string, notify Notifier) (string, Outcome) {
	if notify == nil {
		notify = func(string) {}
	}
	if !a.enabled {
		a.finish(OutcomeDisabled, 0)
		return disabledReply, OutcomeDisabled
	}

	parts, err := BuildTurnParts(input)
	if err != nil {
		a.logger.Warn("turn input rejected", zap.Error(err))
		a.finish(OutcomeImageError, 0)
		return err.Error(), OutcomeImageError
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := sess.SendUser(ctx, parts)
	a.observeLatency(start)
	rounds := 0
	for {
		if err != nil {
			a.logger.Error("model endpoint call failed", zap.Error(err), zap.Int("rounds", rounds))
			a.finish(OutcomeEndpointError, rounds)
			return endpointReply, OutcomeEndpointError
		}
		if reply.IsFinal() {
			a.finish(OutcomeDone, rounds)
			if reply.Text == "" {
				return emptyReply, OutcomeDone
			}
			return reply.Text, OutcomeDone
		}
		if rounds >= a.maxRounds {
			a.logger.Warn("tool round bound exceeded", zap.Int("max_rounds", a.maxRounds))
			a.finish(OutcomeBoundExceeded, rounds)
			return boundReply, OutcomeBoundExceeded
		}
		rounds++

		// Announce every call in the batch before any of them runs.
		for _, call := range reply.Calls {
			notify(a.registry.Notice(call))
		}

		results := make([]conversation.ToolResult, 0, len(reply.Calls))
		for _, call := range reply.Calls {
			res := a.registry.Dispatch(ctx, call)
			if a.metrics != nil {
				status := "ok"
				if res.IsError {
					status = "error"
				}
				a.metrics.ObserveToolDispatch(call.Name, status)
			}
			results = append(results, res)
		}

		start = time.Now()
		reply, err = sess.SendToolResults(ctx, results)
		a.observeLatency(start)
	}
}

func (a *Assistant) observeLatency(start time.Time) {
	if a.metrics != nil {
		a.metrics.ObserveEndpointLatency(time.Since(start))
	}
}

func (a *Assistant) finish(outcome Outcome, rounds int) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveTurn(string(outcome))
	a.metrics.ObserveToolRounds(rounds)
}

// DisabledReply is the fixed degraded-mode answer, exported for shells that
// want to render it eagerly.
func DisabledReply() string { return disabledReply }
