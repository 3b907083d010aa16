package storage

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"google.golang.org/api/option"
)

func TestInferSchema(t *testing.T) {
	schema := InferSchema(sampleDataset())
	require.Len(t, schema, len(domain.Columns()))

	types := map[string]bigquery.FieldType{}
	for _, field := range schema {
		types[field.Name] = field.Type
	}

	assert.Equal(t, bigquery.StringFieldType, types[domain.ColAccountType])
	assert.Equal(t, bigquery.IntegerFieldType, types[domain.ColAccountID])
	assert.Equal(t, bigquery.StringFieldType, types[domain.ColCampaignName])
	assert.Equal(t, bigquery.FloatFieldType, types[domain.ColSpend])
	assert.Equal(t, bigquery.IntegerFieldType, types[domain.ColImpressions])
	assert.Equal(t, bigquery.IntegerFieldType, types[domain.ColClicks])
	assert.Equal(t, bigquery.DateFieldType, types[domain.ColDate])
}

func TestInferSchemaKeepsColumnOrder(t *testing.T) {
	schema := InferSchema(nil)

	names := make([]string, 0, len(schema))
	for _, field := range schema {
		names = append(names, field.Name)
	}
	assert.Equal(t, domain.Columns(), names)
}

func TestLoaderCarriesLocationAndDisposition(t *testing.T) {
	client, err := bigquery.NewClient(context.Background(), "test-project",
		option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()

	s := &BigQueryStorage{client: client, dataset: "ads", table: "ads_data", location: "EU"}

	loader := s.loaderFor(bigquery.NewReaderSource(strings.NewReader("")))
	assert.Equal(t, bigquery.WriteAppend, loader.WriteDisposition)
	assert.Equal(t, "EU", loader.Location)
}

func TestNewBigQueryStorageValidation(t *testing.T) {
	cfg := &config.Config{}
	cfg.BigQuery.Dataset = "ads"
	cfg.BigQuery.Table = "ads_data"

	_, err := NewBigQueryStorage(cfg)
	assert.Error(t, err)
}
