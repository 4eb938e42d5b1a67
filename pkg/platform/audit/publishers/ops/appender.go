// Package ops samples operations-category audit events before they reach a
// sink. Compliance events always pass through untouched.
package ops

import (
	"context"

	audit "creditline/pkg/platform/audit"
)

// SamplingAppender forwards compliance events and a sampled share of
// operations events to next.
type SamplingAppender struct {
	next    audit.Appender
	sampler *Sampler
	metrics *Metrics
}

// NewSamplingAppender wraps next. A nil metrics disables counting.
func NewSamplingAppender(next audit.Appender, sampler *Sampler, metrics *Metrics) *SamplingAppender {
	return &SamplingAppender{next: next, sampler: sampler, metrics: metrics}
}

func (a *SamplingAppender) Append(ctx context.Context, event audit.Event) error {
	if event.Category != audit.CategoryOperations {
		return a.next.Append(ctx, event)
	}
	if !a.sampler.ShouldSample(event.Action) {
		a.metrics.incSampled()
		return nil
	}
	if err := a.next.Append(ctx, event); err != nil {
		a.metrics.incPersistFailures()
		return err
	}
	a.metrics.incTracked()
	return nil
}
