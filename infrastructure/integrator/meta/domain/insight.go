package metadomain

// AdInsight is one row of the Graph API insights response at ad level. The
// API returns every metric as a string.
type AdInsight struct {
	AccountID    string `json:"account_id"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	AdsetID      string `json:"adset_id"`
	AdsetName    string `json:"adset_name"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
	Spend        string `json:"spend"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`
}

// Paging carries the cursor block of a Graph API list response. Next is a
// complete URL for the following page; it is empty on the last page.
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next"`
}

// InsightsPage is one page of the insights endpoint.
type InsightsPage struct {
	Data   []AdInsight `json:"data"`
	Paging Paging      `json:"paging"`
}

// AdAccount is an entry of the user's ad-account listing.
type AdAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdAccountsPage is one page of the me/adaccounts endpoint.
type AdAccountsPage struct {
	Data   []AdAccount `json:"data"`
	Paging Paging      `json:"paging"`
}
