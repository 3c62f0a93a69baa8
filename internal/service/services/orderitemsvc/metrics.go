package orderitemsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	addItemRequests metric.Int64Counter
	addItemDuration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	requests, err := meter.Int64Counter(
		"orderitems.add_item.requests",
		metric.WithDescription("Add item requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create add item counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"orderitems.add_item.duration",
		metric.WithDescription("Add item request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create add item histogram: %w", err)
	}

	return &metrics{
		addItemRequests: requests,
		addItemDuration: duration,
	}, nil
}

func (m *metrics) recordAddItem(ctx context.Context, err error, elapsed time.Duration) {
	outcome := metric.WithAttributes(attribute.String("outcome", apperr.Code(err)))
	m.addItemRequests.Add(ctx, 1, outcome)
	m.addItemDuration.Record(ctx, elapsed.Seconds(), outcome)
}
