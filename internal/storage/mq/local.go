package mq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tuanvumaihuynh/coop-inventory/pkg/outbox"
)

var (
	_ Producer = (*LocalBroker)(nil)
	_ Consumer = (*LocalBroker)(nil)
)

// LocalBroker delivers produced messages to the handlers registered in the
// same process. It stands in for Kafka when no brokers are configured.
// Messages produced before Run or for topics without a handler are logged
// and dropped.
type LocalBroker struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	running  bool
	log      *slog.Logger
}

func NewLocalBroker(logger *slog.Logger) *LocalBroker {
	return &LocalBroker{
		handlers: make(map[string]HandlerFunc),
		log:      logger,
	}
}

func (b *LocalBroker) RegisterHandler(topic string, handler HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}

	b.handlers[topic] = handler
	return nil
}

func (b *LocalBroker) Run(context.Context) (CleanupFunc, error) {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}, nil
}

// Produce runs the topic handler synchronously. Handler errors are logged,
// not returned, the same way the Kafka consumer treats them.
func (b *LocalBroker) Produce(ctx context.Context, msg ProduceMsg) error {
	b.mu.RLock()
	fn, exists := b.handlers[msg.Topic]
	running := b.running
	b.mu.RUnlock()

	if !running || !exists {
		b.log.DebugContext(ctx, "dropping message without consumer",
			slog.String("topic", msg.Topic),
			slog.String("payload", string(msg.Payload)),
		)
		return nil
	}

	ctx = outbox.ExtractContextFromHeaders(ctx, msg.Headers)
	if err := fn(ctx, msg.Topic, msg.Payload); err != nil {
		b.log.ErrorContext(ctx, "error handling message",
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
	}

	return nil
}
