package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-collector/infrastructure/storage"
	storagemocks "github.com/vfg2006/ads-collector/infrastructure/storage/mocks"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/vfg2006/ads-collector/internal/provider"
	providermocks "github.com/vfg2006/ads-collector/internal/provider/mocks"
	"go.uber.org/mock/gomock"
)

func window(start, end string) Window {
	parse := func(value string) time.Time {
		t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
		if err != nil {
			panic(err)
		}
		return t
	}
	return Window{Start: parse(start), End: parse(end)}
}

func providerRegistry(sources map[string]provider.Provider) provider.Registry {
	registry := provider.Registry{}
	for name, source := range sources {
		source := source
		registry[name] = func(*config.Config) (provider.Provider, error) {
			return source, nil
		}
	}
	return registry
}

func storageRegistry(sinks map[string]storage.Storage) storage.Registry {
	registry := storage.Registry{}
	for name, sink := range sinks {
		sink := sink
		registry[name] = func(*config.Config) (storage.Storage, error) {
			return sink, nil
		}
	}
	return registry
}

func rawRow(date string) domain.RawRecord {
	return domain.RawRecord{
		domain.ColAccountID: "1",
		domain.ColAdID:      "30",
		domain.ColClicks:    "1",
		domain.ColDateStart: date,
	}
}

func TestRunSortsAcrossProviders(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := providermocks.NewMockProvider(ctrl)
	meta.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.RawRecord{rawRow("2024-05-02"), rawRow("2024-05-01")}, nil)
	meta.EXPECT().Name().Return("meta")

	google := providermocks.NewMockProvider(ctrl)
	google.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.RawRecord{rawRow("2024-05-03"), rawRow("2024-05-01")}, nil)
	google.EXPECT().Name().Return("google")

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Save(gomock.Any(), gomock.Any(), "ads_data_2024-05-01_to_2024-05-03").
		DoAndReturn(func(_ context.Context, dataset domain.Dataset, _ string) error {
			require.Len(t, dataset, 4)
			for i := 1; i < len(dataset); i++ {
				assert.False(t, dataset[i].Date.Before(dataset[i-1].Date))
			}
			// Same-day records keep provider order: meta fetched first.
			assert.Equal(t, "meta", dataset[0].AccountType)
			assert.Equal(t, "google", dataset[1].AccountType)
			return nil
		})
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(map[string]provider.Provider{"meta": meta, "google": google}),
		storageRegistry(map[string]storage.Storage{"csv": sink}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-03"),
		[]string{"meta", "google"}, []string{"csv"})
	require.NoError(t, err)
}

func TestRunFailingSinkKeepsEarlierSinkEffects(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := providermocks.NewMockProvider(ctrl)
	meta.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.RawRecord{rawRow("2024-05-01")}, nil)
	meta.EXPECT().Name().Return("meta")

	first := storagemocks.NewMockStorage(ctrl)
	first.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	first.EXPECT().Name().Return("csv").AnyTimes()

	second := storagemocks.NewMockStorage(ctrl)
	second.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))
	second.EXPECT().Name().Return("excel").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(map[string]provider.Provider{"meta": meta}),
		storageRegistry(map[string]storage.Storage{"csv": first, "excel": second}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"meta"}, []string{"csv", "excel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excel")
}

func TestRunSkipsUnknownNames(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := providermocks.NewMockProvider(ctrl)
	meta.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.RawRecord{rawRow("2024-05-01")}, nil)
	meta.EXPECT().Name().Return("meta")

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(map[string]provider.Provider{"meta": meta}),
		storageRegistry(map[string]storage.Storage{"csv": sink}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"meta", "tiktok"}, []string{"csv", "parquet"})
	require.NoError(t, err)
}

func TestRunAllProvidersUnknownIsNoData(t *testing.T) {
	ctrl := gomock.NewController(t)

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(nil),
		storageRegistry(map[string]storage.Storage{"csv": sink}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"tiktok"}, []string{"csv"})
	require.NoError(t, err)
}

func TestRunNoDataSkipsSinks(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := providermocks.NewMockProvider(ctrl)
	meta.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(map[string]provider.Provider{"meta": meta}),
		storageRegistry(map[string]storage.Storage{"csv": sink}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"meta"}, []string{"csv"})
	require.NoError(t, err)
}

func TestRunProviderErrorAbortsBeforeSinks(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := providermocks.NewMockProvider(ctrl)
	meta.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("token expired"))

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{},
		providerRegistry(map[string]provider.Provider{"meta": meta}),
		storageRegistry(map[string]storage.Storage{"csv": sink}),
	)

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"meta"}, []string{"csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meta")
}

func TestRunNoResolvedStorages(t *testing.T) {
	p := New(&config.Config{}, providerRegistry(nil), storageRegistry(nil))

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		[]string{"meta"}, []string{"parquet"})
	assert.ErrorIs(t, err, ErrNoStorages)
}

func TestRunNoProviders(t *testing.T) {
	ctrl := gomock.NewController(t)

	sink := storagemocks.NewMockStorage(ctrl)
	sink.EXPECT().Name().Return("csv").AnyTimes()

	p := New(&config.Config{}, providerRegistry(nil),
		storageRegistry(map[string]storage.Storage{"csv": sink}))

	err := p.Run(context.Background(), window("2024-05-01", "2024-05-01"),
		nil, []string{"csv"})
	assert.ErrorIs(t, err, ErrNoProviders)
}
