package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	metadomain "github.com/vfg2006/ads-collector/infrastructure/integrator/meta/domain"
)

const (
	insightsLevel     = "ad"
	insightsPageLimit = "1000"
)

var insightsFields = strings.Join([]string{
	"account_id",
	"campaign_id",
	"campaign_name",
	"adset_id",
	"adset_name",
	"ad_id",
	"ad_name",
	"spend",
	"impressions",
	"clicks",
	"date_start",
	"date_stop",
}, ",")

// GetInsights requests the first page of ad-level insights for a single day.
// The insights endpoint aggregates over time_range, so callers slice ranges
// into single-day windows to keep per-day rows.
func (c *MetaClient) GetInsights(ctx context.Context, accountID string, day time.Time) (*metadomain.InsightsPage, error) {
	account := accountID
	if !strings.HasPrefix(account, "act_") {
		account = "act_" + account
	}

	baseURL := fmt.Sprintf("%s/%s/insights", c.Cfg.Meta.URL, account)

	date := day.Format(time.DateOnly)
	timeRange := fmt.Sprintf(`{"since":%q,"until":%q}`, date, date)

	params := url.Values{}
	params.Set("level", insightsLevel)
	params.Set("fields", insightsFields)
	params.Set("limit", insightsPageLimit)
	params.Set("time_range", timeRange)
	c.sign(params)

	return c.GetInsightsPage(ctx, baseURL+"?"+params.Encode())
}

// GetInsightsPage fetches one insights page by URL. Follow-up pages use the
// paging.next link as-is; the Graph API already signs it.
func (c *MetaClient) GetInsightsPage(ctx context.Context, pageURL string) (*metadomain.InsightsPage, error) {
	page := &metadomain.InsightsPage{}
	if err := c.get(ctx, pageURL, page); err != nil {
		return nil, err
	}

	return page, nil
}
