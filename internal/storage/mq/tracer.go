package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// tracingHooks instruments a Kafka client with spans for produced and
// fetched records. It resolves the global provider and propagator when the
// client is built, after telemetry has been initialised.
func tracingHooks() kgo.Opt {
	kt := kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
	return kgo.WithHooks(kotel.NewKotel(kotel.WithTracer(kt)).Hooks()...)
}
