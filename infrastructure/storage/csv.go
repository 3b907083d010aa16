package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/domain"
)

const NameCSV = "csv"

type CSVStorage struct {
	Dir string
}

func NewCSVStorage() *CSVStorage {
	return &CSVStorage{Dir: outputDir}
}

func (s *CSVStorage) Name() string {
	return NameCSV
}

// Save writes <dir>/<baseName>.csv, creating the directory when missing and
// overwriting any previous file.
func (s *CSVStorage) Save(_ context.Context, dataset domain.Dataset, baseName string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, "csv: creating output directory")
	}

	path := filepath.Join(s.Dir, baseName+".csv")

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "csv: creating output file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(domain.Columns()); err != nil {
		return errors.Wrap(err, "csv: writing header")
	}

	for _, record := range dataset {
		if err := writer.Write(textRow(record)); err != nil {
			return errors.Wrap(err, "csv: writing row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "csv: flushing output")
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"rows": len(dataset),
	}).Info("saved CSV")

	return nil
}
