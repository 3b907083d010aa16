package meta

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-collector/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-collector/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
	"github.com/vfg2006/ads-collector/internal/provider"
	"github.com/vfg2006/ads-collector/pkg/backoff"
	"github.com/vfg2006/ads-collector/pkg/utils"
)

// Name is the provider's registered name and the account_type tag of every
// record it produces.
const Name = "meta"

type Provider struct {
	cfg    *config.Config
	client metaclient.Client
	caller *backoff.Caller
}

// Factory builds the Meta provider from configuration.
func Factory(cfg *config.Config) (provider.Provider, error) {
	if cfg.Meta.AccessToken == "" {
		return nil, errors.New("META_ACCESS_TOKEN is required for the meta provider")
	}

	return New(cfg, metaclient.NewClient(cfg), backoff.New()), nil
}

func New(cfg *config.Config, client metaclient.Client, caller *backoff.Caller) *Provider {
	return &Provider{
		cfg:    cfg,
		client: client,
		caller: caller,
	}
}

func (p *Provider) Name() string {
	return Name
}

// Fetch collects ad-level insight rows for every (ad account × day) pair in
// the window. The first page of each pair goes through the backoff caller;
// follow-up pages are drained directly so the caller stays the single retry
// point.
func (p *Provider) Fetch(ctx context.Context, startDate, endDate time.Time) ([]domain.RawRecord, error) {
	accountIDs, err := p.accountIDs(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0)

	for _, accountID := range accountIDs {
		for _, day := range utils.DatesBetween(startDate, endDate) {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"date":       day.Format(time.DateOnly),
			}).Info("fetching meta insights")

			page, err := backoff.Call(ctx, p.caller, func() (*metadomain.InsightsPage, error) {
				return p.client.GetInsights(ctx, accountID, day)
			})
			if err != nil {
				return nil, errors.Wrapf(err, "meta: fetching insights for account %s", accountID)
			}

			for {
				for _, row := range page.Data {
					records = append(records, rawRecord(row))
				}

				if page.Paging.Next == "" {
					break
				}

				page, err = p.client.GetInsightsPage(ctx, page.Paging.Next)
				if err != nil {
					return nil, errors.Wrapf(err, "meta: fetching insights page for account %s", accountID)
				}
			}
		}
	}

	return records, nil
}

// accountIDs resolves the ad accounts to query: the configured comma list, or
// every account of the current user when none is configured.
func (p *Provider) accountIDs(ctx context.Context) ([]string, error) {
	if ids := p.cfg.Meta.AccountIDs(); len(ids) > 0 {
		return ids, nil
	}

	accounts, err := backoff.Call(ctx, p.caller, func() ([]metadomain.AdAccount, error) {
		return p.client.GetAdAccounts(ctx)
	})
	if err != nil {
		return nil, errors.Wrap(err, "meta: listing ad accounts")
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}

	return ids, nil
}

func rawRecord(row metadomain.AdInsight) domain.RawRecord {
	return domain.RawRecord{
		domain.ColAccountID:    row.AccountID,
		domain.ColCampaignID:   row.CampaignID,
		domain.ColCampaignName: row.CampaignName,
		domain.ColAdsetID:      row.AdsetID,
		domain.ColAdsetName:    row.AdsetName,
		domain.ColAdID:         row.AdID,
		domain.ColAdName:       row.AdName,
		domain.ColSpend:        row.Spend,
		domain.ColImpressions:  row.Impressions,
		domain.ColClicks:       row.Clicks,
		domain.ColDateStart:    row.DateStart,
		domain.ColDateStop:     row.DateStop,
	}
}
