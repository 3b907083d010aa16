package domain

import (
	"sort"
	"time"
)

// Canonical column names shared by providers, the normalizer and the sinks.
const (
	ColAccountType  = "account_type"
	ColAccountID    = "account_id"
	ColCampaignID   = "campaign_id"
	ColCampaignName = "campaign_name"
	ColAdsetID      = "adset_id"
	ColAdsetName    = "adset_name"
	ColAdID         = "ad_id"
	ColAdName       = "ad_name"
	ColSpend        = "spend"
	ColImpressions  = "impressions"
	ColClicks       = "clicks"
	ColDate         = "date"

	// Provider-side day columns, dropped during normalization.
	ColDateStart = "date_start"
	ColDateStop  = "date_stop"
)

// FieldType is the logical type of a canonical column, used for sink schema
// inference.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldFloat   FieldType = "float"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
)

// ColumnSpec describes one canonical column.
type ColumnSpec struct {
	Name string
	Type FieldType
}

var columnSpecs = []ColumnSpec{
	{ColAccountType, FieldString},
	{ColAccountID, FieldInteger},
	{ColCampaignID, FieldInteger},
	{ColCampaignName, FieldString},
	{ColAdsetID, FieldInteger},
	{ColAdsetName, FieldString},
	{ColAdID, FieldInteger},
	{ColAdName, FieldString},
	{ColSpend, FieldFloat},
	{ColImpressions, FieldInteger},
	{ColClicks, FieldInteger},
	{ColDate, FieldDate},
}

// ColumnSpecs returns the canonical columns in persistence order.
func ColumnSpecs() []ColumnSpec {
	specs := make([]ColumnSpec, len(columnSpecs))
	copy(specs, columnSpecs)
	return specs
}

// Columns returns the canonical column names in persistence order.
func Columns() []string {
	names := make([]string, len(columnSpecs))
	for i, spec := range columnSpecs {
		names[i] = spec.Name
	}
	return names
}

// RawRecord is a provider-shaped row keyed by canonical column names. Values
// keep whatever type the vendor API produced; the normalizer coerces them.
type RawRecord map[string]any

// AdRecord is the canonical per-ad per-day row. Identifier and metric fields
// are pointers so that coercion failures survive as NULLs.
type AdRecord struct {
	AccountType  string
	AccountID    *int64
	CampaignID   *int64
	CampaignName string
	AdsetID      *int64
	AdsetName    string
	AdID         *int64
	AdName       string
	Spend        *float64
	Impressions  *int64
	Clicks       *int64
	Date         time.Time
}

// Value returns the record's value for a canonical column. Nil pointers come
// back as untyped nil so sinks can render them as NULL / empty cells.
func (r AdRecord) Value(column string) any {
	switch column {
	case ColAccountType:
		return r.AccountType
	case ColAccountID:
		return int64Value(r.AccountID)
	case ColCampaignID:
		return int64Value(r.CampaignID)
	case ColCampaignName:
		return r.CampaignName
	case ColAdsetID:
		return int64Value(r.AdsetID)
	case ColAdsetName:
		return r.AdsetName
	case ColAdID:
		return int64Value(r.AdID)
	case ColAdName:
		return r.AdName
	case ColSpend:
		if r.Spend == nil {
			return nil
		}
		return *r.Spend
	case ColImpressions:
		return int64Value(r.Impressions)
	case ColClicks:
		return int64Value(r.Clicks)
	case ColDate:
		return r.Date
	default:
		return nil
	}
}

func int64Value(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Dataset is the ordered sequence of canonical records carried between the
// normalizer and the sinks. It is read-only for sinks.
type Dataset []AdRecord

// SortByDate orders the dataset ascending by date, keeping the relative order
// of records sharing a day.
func (d Dataset) SortByDate() {
	sort.SliceStable(d, func(i, j int) bool {
		return d[i].Date.Before(d[j].Date)
	})
}
