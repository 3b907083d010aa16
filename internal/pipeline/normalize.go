package pipeline

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/vfg2006/ads-collector/pkg/utils"
)

// Normalize coerces provider-shaped rows into the canonical schema. Identifier
// and metric values that fail coercion become NULLs; a missing or unparseable
// date fails the whole batch since dates drive ordering and dedup keys.
func Normalize(raw []domain.RawRecord, providerName string) (domain.Dataset, error) {
	dataset := make(domain.Dataset, 0, len(raw))

	for i, row := range raw {
		date, err := recordDate(row)
		if err != nil {
			return nil, errors.Wrapf(err, "normalizing %s record %d", providerName, i)
		}

		dataset = append(dataset, domain.AdRecord{
			AccountType:  providerName,
			AccountID:    toInt64(row[domain.ColAccountID]),
			CampaignID:   toInt64(row[domain.ColCampaignID]),
			CampaignName: toString(row[domain.ColCampaignName]),
			AdsetID:      toInt64(row[domain.ColAdsetID]),
			AdsetName:    toString(row[domain.ColAdsetName]),
			AdID:         toInt64(row[domain.ColAdID]),
			AdName:       toString(row[domain.ColAdName]),
			Spend:        toFloat64(row[domain.ColSpend]),
			Impressions:  toInt64(row[domain.ColImpressions]),
			Clicks:       toInt64(row[domain.ColClicks]),
			Date:         date,
		})
	}

	return dataset, nil
}

func recordDate(row domain.RawRecord) (time.Time, error) {
	value, ok := row[domain.ColDateStart]
	if !ok {
		value = row[domain.ColDate]
	}

	switch v := value.(type) {
	case time.Time:
		return utils.Day(v), nil
	case string:
		return utils.ParseDate(v)
	default:
		return time.Time{}, errors.Errorf("record has no date (got %T)", value)
	}
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func toInt64(value any) *int64 {
	switch v := value.(type) {
	case int64:
		return &v
	case int:
		n := int64(v)
		return &n
	case float64:
		n := int64(v)
		return &n
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &n
		}
		// Vendors occasionally send integral metrics as "1000.0".
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			n := int64(f)
			return &n
		}
	}
	return nil
}

func toFloat64(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}
