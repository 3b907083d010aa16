package provider

import (
	"context"
	"time"

	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
)

// Provider is a source of ad-performance records identified by a registered
// name.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, startDate, endDate time.Time) ([]domain.RawRecord, error)
}

// Factory builds a provider from configuration. Construction validates the
// provider's environment and may reach the vendor API lazily.
type Factory func(cfg *config.Config) (Provider, error)

// Registry maps provider names to factories. Lookup is a plain table lookup;
// unknown names are reported and skipped by the pipeline driver.
type Registry map[string]Factory

func (r Registry) Resolve(name string) (Factory, bool) {
	factory, ok := r[name]
	return factory, ok
}
