package lifecycle

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes lifecycle instruments.
const MeterName = "github.com/louisbranch/foodshare/donations/lifecycle"

// Outcome labels recorded for each transition attempt.
const (
	OutcomeApplied     = "applied"
	OutcomeInvalid     = "invalid_transition"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics holds lifecycle instruments.
type Metrics struct {
	transitions metric.Int64Counter
}

// NewMetrics creates lifecycle instruments on provider. A nil provider
// returns nil metrics, which record nothing.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(MeterName)
	transitions, err := meter.Int64Counter(
		"foodshare_donation_transitions_total",
		metric.WithDescription("Donation lifecycle operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{transitions: transitions}, nil
}

func (m *Metrics) record(ctx context.Context, op string, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
