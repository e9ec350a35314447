package pipeline

import (
	"context"

	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// Runner executes pipeline runs. *Controller and *Limiter satisfy it.
type Runner interface {
	Generate(ctx context.Context, req Request) Result
}

var _ Runner = (*Controller)(nil)

// Limiter caps how many runs execute at once. Callers beyond the cap wait
// for a slot until their context is done.
type Limiter struct {
	next   Runner
	slots  chan struct{}
	logger logger.Logger
}

// NewLimiter wraps next so that at most maxRuns runs are in flight.
// A maxRuns below one is treated as one.
func NewLimiter(next Runner, maxRuns int, log logger.Logger) *Limiter {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &Limiter{
		next:   next,
		slots:  make(chan struct{}, maxRuns),
		logger: log,
	}
}

// Generate waits for a free slot and runs the request.
func (l *Limiter) Generate(ctx context.Context, req Request) Result {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		l.logger.Warn(ctx, "run cancelled while waiting for a slot", map[string]interface{}{
			"story_url": req.StoryURL,
			"error":     ctx.Err().Error(),
		})
		return Result{Status: StatusError, Message: "request cancelled while waiting for a generation slot"}
	}
	defer func() { <-l.slots }()

	return l.next.Generate(ctx, req)
}
