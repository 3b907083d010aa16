package googleads

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/vfg2006/ads-collector/internal/provider"
)

// Name is the provider's registered name and the account_type tag of every
// record it produces.
const Name = "google"

const gaqlQuery = `
	SELECT
		customer.id,
		campaign.id,
		campaign.name,
		ad_group.id,
		ad_group.name,
		ad_group_ad.ad.id,
		ad_group_ad.ad.name,
		metrics.cost_micros,
		metrics.impressions,
		metrics.clicks,
		segments.date
	FROM ad_group_ad
	WHERE segments.date BETWEEN '%s' AND '%s'`

type Provider struct {
	client StreamClient
}

// Factory builds the Google provider from configuration.
func Factory(cfg *config.Config) (provider.Provider, error) {
	if cfg.Google.ConfigPath == "" || cfg.Google.CustomerID == "" {
		return nil, errors.New("GOOGLEADS_CONFIG and GOOGLEADS_CUSTOMER_ID are required for the google provider")
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return New(client), nil
}

func New(client StreamClient) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string {
	return Name
}

// Fetch issues a single GAQL query over the whole window. GAQL segments by
// date on its own, so no per-day slicing is needed.
func (p *Provider) Fetch(ctx context.Context, startDate, endDate time.Time) ([]domain.RawRecord, error) {
	query := fmt.Sprintf(gaqlQuery, startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))

	logrus.WithFields(logrus.Fields{
		"start_date": startDate.Format(time.DateOnly),
		"end_date":   endDate.Format(time.DateOnly),
	}).Info("fetching google ads rows")

	batches, err := p.client.SearchStream(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "googleads: search stream")
	}

	records := make([]domain.RawRecord, 0)
	for _, batch := range batches {
		for _, row := range batch.Results {
			records = append(records, rawRecord(row))
		}
	}

	return records, nil
}

func rawRecord(row SearchRow) domain.RawRecord {
	record := domain.RawRecord{
		domain.ColAccountID:    row.Customer.ID,
		domain.ColCampaignID:   row.Campaign.ID,
		domain.ColCampaignName: row.Campaign.Name,
		domain.ColAdsetID:      row.AdGroup.ID,
		domain.ColAdsetName:    row.AdGroup.Name,
		domain.ColAdID:         row.AdGroupAd.Ad.ID,
		domain.ColAdName:       row.AdGroupAd.Ad.Name,
		domain.ColImpressions:  row.Metrics.Impressions,
		domain.ColClicks:       row.Metrics.Clicks,
		domain.ColDateStart:    row.Segments.Date,
		domain.ColDateStop:     row.Segments.Date,
	}

	// cost_micros is micro-units of the account currency.
	if micros, err := strconv.ParseFloat(row.Metrics.CostMicros, 64); err == nil {
		record[domain.ColSpend] = micros / 1_000_000
	} else {
		record[domain.ColSpend] = row.Metrics.CostMicros
	}

	return record
}
