package metaclient

import (
	"context"
	"fmt"
	"net/url"

	metadomain "github.com/vfg2006/ads-collector/infrastructure/integrator/meta/domain"
)

// GetAdAccounts lists every ad account of the current user, draining paging.
func (c *MetaClient) GetAdAccounts(ctx context.Context) ([]metadomain.AdAccount, error) {
	baseURL := fmt.Sprintf("%s/me/adaccounts", c.Cfg.Meta.URL)

	params := url.Values{}
	params.Set("fields", "id,name")
	c.sign(params)

	accounts := make([]metadomain.AdAccount, 0)

	pageURL := baseURL + "?" + params.Encode()
	for pageURL != "" {
		page := &metadomain.AdAccountsPage{}
		if err := c.get(ctx, pageURL, page); err != nil {
			return nil, err
		}

		accounts = append(accounts, page.Data...)
		pageURL = page.Paging.Next
	}

	return accounts, nil
}
