// Package storage implements the sinks that persist the canonical dataset.
package storage

import (
	"context"

	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
)

// Storage persists a dataset under a base name. Implementations own their
// backend clients and operate independently of each other.
type Storage interface {
	Name() string
	Save(ctx context.Context, dataset domain.Dataset, baseName string) error
}

// Factory builds a storage from configuration. Construction validates the
// sink's environment.
type Factory func(cfg *config.Config) (Storage, error)

// Registry maps storage names to factories.
type Registry map[string]Factory

func (r Registry) Resolve(name string) (Factory, bool) {
	factory, ok := r[name]
	return factory, ok
}

// Factories returns the registry of every built-in sink.
func Factories() Registry {
	return Registry{
		NameCSV:      func(*config.Config) (Storage, error) { return NewCSVStorage(), nil },
		NameExcel:    func(*config.Config) (Storage, error) { return NewExcelStorage(), nil },
		NameBigQuery: func(cfg *config.Config) (Storage, error) { return NewBigQueryStorage(cfg) },
		NameMySQL:    func(cfg *config.Config) (Storage, error) { return NewMySQLStorage(cfg) },
	}
}
