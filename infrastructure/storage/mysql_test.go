package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
)

func TestInsertQuery(t *testing.T) {
	query, args, err := insertQuery("ads_data", sampleDataset())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT IGNORE INTO ads_data"), query)
	assert.Contains(t, query, strings.Join(domain.Columns(), ","))
	assert.Equal(t, 2, strings.Count(query, "(?,?,?,?,?,?,?,?,?,?,?,?)"))
	require.Len(t, args, 2*len(domain.Columns()))

	// First record binds concrete values, dates as day strings.
	assert.Equal(t, "meta", args[0])
	assert.Equal(t, int64(123), args[1])
	assert.Equal(t, 12.5, args[8])
	assert.Equal(t, "2024-05-01", args[11])

	// Second record binds NULLs for missing campaign_id, spend and impressions.
	second := args[len(domain.Columns()):]
	assert.Nil(t, second[2])
	assert.Nil(t, second[8])
	assert.Nil(t, second[9])
	assert.Equal(t, int64(7), second[10])
}

func TestNewMySQLStorageValidation(t *testing.T) {
	cfg := &config.Config{}
	cfg.MySQL.User = "etl"

	_, err := NewMySQLStorage(cfg)
	assert.Error(t, err)

	cfg.MySQL.Database = "ads"
	cfg.MySQL.Table = "ads_data"
	s, err := NewMySQLStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, NameMySQL, s.Name())
}
