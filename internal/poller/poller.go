package poller

import (
	"context"
	"time"

	"resume-screening-backend/internal/usecase"
	"resume-screening-backend/pkg/logger"
)

// errorBackoff is the delay after a failed cycle before retrying, shorter
// than the regular interval so transient outages recover quickly.
const errorBackoff = 60 * time.Second

// Poller runs the intake pipeline on a fixed interval until its context is
// cancelled.
type Poller struct {
	pipeline *usecase.PipelineUsecase
	interval time.Duration
}

func New(pipeline *usecase.PipelineUsecase, interval time.Duration) *Poller {
	return &Poller{pipeline: pipeline, interval: interval}
}

// Run blocks until ctx is cancelled. The first cycle starts immediately.
func (p *Poller) Run(ctx context.Context) {
	logger.Log.Info("Email processing loop started", "interval", p.interval.String())
	for {
		delay := p.interval
		if err := p.pipeline.ProcessNewEmails(ctx); err != nil {
			logger.Log.Error("Error in email processing loop", "error", err)
			delay = errorBackoff
		}

		select {
		case <-ctx.Done():
			logger.Log.Info("Email processing loop stopped")
			return
		case <-time.After(delay):
		}
	}
}
