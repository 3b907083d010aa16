package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-collector/internal/domain"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

func day(value string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		{
			AccountType:  "meta",
			AccountID:    i64(123),
			CampaignID:   i64(10),
			CampaignName: "Summer Sale",
			AdsetID:      i64(20),
			AdsetName:    "Lookalike",
			AdID:         i64(30),
			AdName:       "Creative A",
			Spend:        f64(12.5),
			Impressions:  i64(1000),
			Clicks:       i64(42),
			Date:         day("2024-05-01"),
		},
		{
			AccountType:  "google",
			AccountID:    i64(456),
			CampaignID:   nil,
			CampaignName: "Brand",
			AdsetID:      i64(21),
			AdsetName:    "Exact",
			AdID:         i64(31),
			AdName:       "Creative B",
			Spend:        nil,
			Impressions:  nil,
			Clicks:       i64(7),
			Date:         day("2024-05-02"),
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVStorageSave(t *testing.T) {
	dir := t.TempDir()
	s := &CSVStorage{Dir: filepath.Join(dir, "dist")}

	err := s.Save(context.Background(), sampleDataset(), "ads_data_2024-05-01_to_2024-05-02")
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(s.Dir, "ads_data_2024-05-01_to_2024-05-02.csv"))
	require.Len(t, rows, 3)

	assert.Equal(t, domain.Columns(), rows[0])
	assert.Equal(t, []string{
		"meta", "123", "10", "Summer Sale", "20", "Lookalike",
		"30", "Creative A", "12.5", "1000", "42", "2024-05-01",
	}, rows[1])

	// NULL metrics render as empty cells.
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "", rows[2][9])
	assert.Equal(t, "7", rows[2][10])
}

func TestCSVStorageSaveOverwrites(t *testing.T) {
	s := &CSVStorage{Dir: t.TempDir()}

	require.NoError(t, s.Save(context.Background(), sampleDataset(), "ads_data"))
	require.NoError(t, s.Save(context.Background(), sampleDataset()[:1], "ads_data"))

	rows := readCSV(t, filepath.Join(s.Dir, "ads_data.csv"))
	assert.Len(t, rows, 2)
}

func TestCSVStorageSaveEmptyDataset(t *testing.T) {
	s := &CSVStorage{Dir: t.TempDir()}

	require.NoError(t, s.Save(context.Background(), nil, "ads_data"))

	rows := readCSV(t, filepath.Join(s.Dir, "ads_data.csv"))
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Columns(), rows[0])
}
