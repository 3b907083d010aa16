package storage

import (
	"bytes"
	"context"
	"encoding/csv"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"google.golang.org/api/option"
)

const NameBigQuery = "bigquery"

type BigQueryStorage struct {
	client   *bigquery.Client
	dataset  string
	table    string
	location string
}

// NewBigQueryStorage builds the warehouse sink from the service-account blob
// referenced by BG_SERVICE_ACCOUNT_JSON.
func NewBigQueryStorage(cfg *config.Config) (*BigQueryStorage, error) {
	if cfg.BigQuery.ServiceAccountJSON == "" || cfg.BigQuery.Dataset == "" || cfg.BigQuery.Table == "" {
		return nil, errors.New("BG_SERVICE_ACCOUNT_JSON, BQ_DATASET and BQ_TABLE are required for the bigquery storage")
	}

	client, err := bigquery.NewClient(
		context.Background(),
		bigquery.DetectProjectID,
		option.WithCredentialsFile(cfg.BigQuery.ServiceAccountJSON),
	)
	if err != nil {
		return nil, errors.Wrap(err, "bigquery: creating client")
	}

	return &BigQueryStorage{
		client:   client,
		dataset:  cfg.BigQuery.Dataset,
		table:    cfg.BigQuery.Table,
		location: cfg.BigQuery.Location,
	}, nil
}

func (s *BigQueryStorage) Name() string {
	return NameBigQuery
}

// InferSchema maps the canonical column types onto a BigQuery schema:
// integer→INTEGER, float→FLOAT, boolean→BOOLEAN, date→DATE, otherwise STRING.
func InferSchema(dataset domain.Dataset) bigquery.Schema {
	_ = dataset // the canonical schema is fixed per run

	schema := make(bigquery.Schema, 0, len(domain.ColumnSpecs()))
	for _, spec := range domain.ColumnSpecs() {
		var fieldType bigquery.FieldType
		switch spec.Type {
		case domain.FieldInteger:
			fieldType = bigquery.IntegerFieldType
		case domain.FieldFloat:
			fieldType = bigquery.FloatFieldType
		case domain.FieldBoolean:
			fieldType = bigquery.BooleanFieldType
		case domain.FieldDate:
			fieldType = bigquery.DateFieldType
		default:
			fieldType = bigquery.StringFieldType
		}

		schema = append(schema, &bigquery.FieldSchema{Name: spec.Name, Type: fieldType})
	}

	return schema
}

// Save loads the dataset into the configured table with append disposition.
// NULLs travel as empty CSV cells.
func (s *BigQueryStorage) Save(ctx context.Context, dataset domain.Dataset, _ string) error {
	buf := &bytes.Buffer{}

	writer := csv.NewWriter(buf)
	for _, record := range dataset {
		if err := writer.Write(textRow(record)); err != nil {
			return errors.Wrap(err, "bigquery: encoding rows")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "bigquery: encoding rows")
	}

	source := bigquery.NewReaderSource(bytes.NewReader(buf.Bytes()))
	source.SourceFormat = bigquery.CSV
	source.Schema = InferSchema(dataset)

	job, err := s.loaderFor(source).Run(ctx)
	if err != nil {
		return errors.Wrap(err, "bigquery: starting load job")
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrap(err, "bigquery: waiting for load job")
	}
	if err := status.Err(); err != nil {
		return errors.Wrap(err, "bigquery: load job failed")
	}

	logrus.WithFields(logrus.Fields{
		"dataset": s.dataset,
		"table":   s.table,
		"rows":    len(dataset),
	}).Info("uploaded rows to BigQuery")

	return nil
}

// loaderFor configures the load job: append disposition, and the dataset
// location from BQ_LOCATION when one is set.
func (s *BigQueryStorage) loaderFor(source *bigquery.ReaderSource) *bigquery.Loader {
	loader := s.client.Dataset(s.dataset).Table(s.table).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.Location = s.location

	return loader
}
