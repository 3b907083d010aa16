package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/xuri/excelize/v2"
)

const NameExcel = "excel"

const excelSheet = "Sheet1"

type ExcelStorage struct {
	Dir string
}

func NewExcelStorage() *ExcelStorage {
	return &ExcelStorage{Dir: outputDir}
}

func (s *ExcelStorage) Name() string {
	return NameExcel
}

// Save writes <dir>/<baseName>.xlsx with the same layout and overwrite
// semantics as the CSV sink.
func (s *ExcelStorage) Save(_ context.Context, dataset domain.Dataset, baseName string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, "excel: creating output directory")
	}

	path := filepath.Join(s.Dir, baseName+".xlsx")

	file := excelize.NewFile()
	defer file.Close()

	header := make([]any, 0, len(domain.Columns()))
	for _, column := range domain.Columns() {
		header = append(header, column)
	}
	if err := file.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "excel: writing header")
	}

	for i, record := range dataset {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "excel: computing cell name")
		}

		row := sheetRow(record)
		if err := file.SetSheetRow(excelSheet, cell, &row); err != nil {
			return errors.Wrap(err, "excel: writing row")
		}
	}

	if err := file.SaveAs(path); err != nil {
		return errors.Wrap(err, "excel: saving workbook")
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"rows": len(dataset),
	}).Info("saved Excel")

	return nil
}

// sheetRow keeps numeric cells numeric and renders dates/NULLs as text so the
// workbook needs no cell styles.
func sheetRow(record domain.AdRecord) []any {
	columns := domain.Columns()

	row := make([]any, len(columns))
	for i, column := range columns {
		switch value := record.Value(column).(type) {
		case nil:
			row[i] = nil
		case int64, float64, string:
			row[i] = value
		default:
			row[i] = formatValue(value)
		}
	}

	return row
}
