package config

import "time"

type Kafka struct {
	// Addresses is empty when no broker is configured; events are then delivered in process.
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"coop-inventory"`
}

// Enabled reports whether a Kafka cluster is configured.
func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}

// Relay controls how the outbox is drained into the message broker.
type Relay struct {
	// BatchSize caps the outbox messages published per tick.
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
}
