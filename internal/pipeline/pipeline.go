// Package pipeline drives one collection run: fetch from providers, normalize,
// and hand the combined dataset to every selected sink.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/infrastructure/storage"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/vfg2006/ads-collector/internal/provider"
)

var (
	ErrNoProviders = errors.New("no usable providers selected")
	ErrNoStorages  = errors.New("no usable storages selected")
)

// Window is the inclusive day range a run covers.
type Window struct {
	Start time.Time
	End   time.Time
}

type Pipeline struct {
	cfg       *config.Config
	providers provider.Registry
	storages  storage.Registry
}

func New(cfg *config.Config, providers provider.Registry, storages storage.Registry) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		providers: providers,
		storages:  storages,
	}
}

// Run executes one collection over the window. Unknown provider or storage
// names are logged and skipped; a provider failure aborts the run before any
// sink writes. A run where every provider returns no rows writes nothing and
// succeeds.
func (p *Pipeline) Run(ctx context.Context, window Window, providerNames, storageNames []string) error {
	log := logrus.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"start":  window.Start.Format(time.DateOnly),
		"end":    window.End.Format(time.DateOnly),
	})

	if len(providerNames) == 0 {
		return ErrNoProviders
	}

	sinks, err := p.resolveStorages(log, storageNames)
	if err != nil {
		return err
	}

	frames := make([]domain.Dataset, 0, len(providerNames))
	for _, name := range providerNames {
		factory, ok := p.providers.Resolve(name)
		if !ok {
			log.WithField("provider", name).Warn("unknown provider, skipping")
			continue
		}

		source, err := factory(p.cfg)
		if err != nil {
			return errors.Wrapf(err, "building provider %s", name)
		}

		raw, err := source.Fetch(ctx, window.Start, window.End)
		if err != nil {
			return errors.Wrapf(err, "fetching from %s", name)
		}

		log.WithFields(logrus.Fields{"provider": name, "rows": len(raw)}).Info("fetched rows")
		if len(raw) == 0 {
			continue
		}

		frame, err := Normalize(raw, source.Name())
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		log.Info("no data fetched, nothing to save")
		return nil
	}

	dataset := domain.Dataset{}
	for _, frame := range frames {
		dataset = append(dataset, frame...)
	}
	dataset.SortByDate()

	baseName := fmt.Sprintf("ads_data_%s_to_%s",
		window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly))

	for _, sink := range sinks {
		if err := sink.Save(ctx, dataset, baseName); err != nil {
			return errors.Wrapf(err, "saving to %s", sink.Name())
		}
		log.WithFields(logrus.Fields{"storage": sink.Name(), "rows": len(dataset)}).Info("saved dataset")
	}

	return nil
}

// resolveStorages builds every selected sink up front so that misconfigured
// sinks fail the run before any provider traffic.
func (p *Pipeline) resolveStorages(log *logrus.Entry, names []string) ([]storage.Storage, error) {
	sinks := make([]storage.Storage, 0, len(names))
	for _, name := range names {
		factory, ok := p.storages.Resolve(name)
		if !ok {
			log.WithField("storage", name).Warn("unknown storage, skipping")
			continue
		}

		sink, err := factory(p.cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "building storage %s", name)
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 0 {
		return nil, ErrNoStorages
	}

	return sinks, nil
}
