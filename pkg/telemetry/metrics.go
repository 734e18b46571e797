package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/pkg/logging"
)

var (
	countersMu sync.Mutex
	counters   = map[string]metric.Int64Counter{}
)

// Count adds n to the named counter. Counters are created on first use against
// whatever meter provider is installed at that moment.
func Count(ctx context.Context, name string, n int64, attrs ...attribute.KeyValue) {
	counter, err := counterFor(name)
	if err != nil {
		logging.GetLogger().Warn("Failed to create counter", zap.String("counter", name), zap.Error(err))
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(attrs...))
}

func counterFor(name string) (metric.Int64Counter, error) {
	countersMu.Lock()
	defer countersMu.Unlock()

	if c, ok := counters[name]; ok {
		return c, nil
	}
	c, err := otel.Meter(serviceName).Int64Counter(name)
	if err != nil {
		return nil, err
	}
	counters[name] = c
	return c, nil
}
