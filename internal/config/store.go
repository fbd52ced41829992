package config

import (
	"fmt"
	"strings"
)

type Store struct {
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"POSTGRES"`
	// Seed fills an empty store with the demo catalog and a month of sales.
	Seed bool `env:"STORE_SEED" envDefault:"false"`
}

// StoreBackend selects where products and sales are persisted.
type StoreBackend uint8

const (
	StoreBackendPostgres StoreBackend = iota
	StoreBackendMemory
)

func (b StoreBackend) String() string {
	return []string{"POSTGRES", "MEMORY"}[b]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *StoreBackend) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*b = StoreBackendPostgres
	case "MEMORY":
		*b = StoreBackendMemory
	default:
		return fmt.Errorf("unknown store backend: %s", text)
	}
	return nil
}

func (b StoreBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
