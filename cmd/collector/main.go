package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/vfg2006/ads-collector/infrastructure/integrator/googleads"
	"github.com/vfg2006/ads-collector/infrastructure/integrator/meta"
	"github.com/vfg2006/ads-collector/infrastructure/storage"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/pipeline"
	"github.com/vfg2006/ads-collector/internal/provider"
	"github.com/vfg2006/ads-collector/internal/scheduler"
	"github.com/vfg2006/ads-collector/pkg/utils"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("invalid log level %q, using info", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	flags, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	providers := provider.Registry{
		meta.Name:      meta.Factory,
		googleads.Name: googleads.Factory,
	}

	driver := pipeline.New(cfg, providers, storage.Factories())

	if cfg.Sync.Enabled {
		syncService := scheduler.NewPipelineSyncService(cfg, driver, flags.providers, flags.storages)
		if err := syncService.Start(ctx); err != nil {
			logrus.Fatal(err)
		}

		<-ctx.Done()
		return
	}

	window := pipeline.Window{Start: flags.startDate, End: flags.endDate}

	err = driver.Run(ctx, window, flags.providers, flags.storages)
	switch {
	case errors.Is(err, pipeline.ErrNoProviders), errors.Is(err, pipeline.ErrNoStorages):
		logrus.Error(err)
		os.Exit(1)
	case err != nil:
		logrus.Fatal(err)
	}
}

type runFlags struct {
	startDate time.Time
	endDate   time.Time
	providers []string
	storages  []string
}

// parseFlags merges CLI flags over environment configuration. Flags win;
// dates default to yesterday.
func parseFlags(cfg *config.Config, args []string) (*runFlags, error) {
	set := pflag.NewFlagSet("collector", pflag.ContinueOnError)

	startFlag := set.String("start-date", "", "first day to collect (YYYY-MM-DD, default yesterday)")
	endFlag := set.String("end-date", "", "last day to collect (YYYY-MM-DD, default yesterday)")
	providersFlag := set.String("providers", "", "comma-separated providers (overrides AD_PROVIDERS)")
	storagesFlag := set.String("storages", "", "comma-separated storages (overrides STORAGES)")

	if err := set.Parse(args); err != nil {
		return nil, err
	}

	yesterday := utils.Day(time.Now().AddDate(0, 0, -1))

	flags := &runFlags{startDate: yesterday, endDate: yesterday}

	if *startFlag != "" {
		start, err := utils.ParseDate(*startFlag)
		if err != nil {
			return nil, errors.Wrap(err, "parsing --start-date")
		}
		flags.startDate = start
	}
	if *endFlag != "" {
		end, err := utils.ParseDate(*endFlag)
		if err != nil {
			return nil, errors.Wrap(err, "parsing --end-date")
		}
		flags.endDate = end
	}

	providers := cfg.Providers
	if *providersFlag != "" {
		providers = *providersFlag
	}
	flags.providers = config.SplitList(providers)
	if len(flags.providers) == 0 {
		return nil, errors.New("no providers selected, set AD_PROVIDERS or --providers")
	}

	storages := cfg.Storages
	if *storagesFlag != "" {
		storages = *storagesFlag
	}
	flags.storages = config.SplitList(storages)

	return flags, nil
}

func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}
