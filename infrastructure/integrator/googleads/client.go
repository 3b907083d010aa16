// Package googleads fetches ad-performance rows through the Google Ads REST
// searchStream endpoint using GAQL.
package googleads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials is the JSON blob referenced by GOOGLEADS_CONFIG.
type Credentials struct {
	DeveloperToken  string `json:"developer_token"`
	ClientID        string `json:"client_id"`
	ClientSecret    string `json:"client_secret"`
	RefreshToken    string `json:"refresh_token"`
	LoginCustomerID string `json:"login_customer_id"`
}

// LoadCredentials reads and validates the credentials blob.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "googleads: reading credentials file")
	}

	creds := &Credentials{}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, errors.Wrap(err, "googleads: decoding credentials file")
	}

	if creds.DeveloperToken == "" || creds.RefreshToken == "" {
		return nil, errors.New("googleads: credentials file must set developer_token and refresh_token")
	}

	return creds, nil
}

// Error is the structured error payload of the Google Ads REST API.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	HTTPStatus int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("googleads: %s (status=%s, code=%d)", e.Message, e.Status, e.Code)
}

// RateLimited reports quota exhaustion from the structured status.
func (e *Error) RateLimited() bool {
	return e.Status == "RESOURCE_EXHAUSTED" || e.Code == 429 || e.HTTPStatus == 429
}

// SearchRow is one result of a searchStream response batch. Field names
// follow the REST JSON casing; 64-bit metrics arrive as strings.
type SearchRow struct {
	Customer struct {
		ID string `json:"id"`
	} `json:"customer"`
	Campaign struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"campaign"`
	AdGroup struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"adGroup"`
	AdGroupAd struct {
		Ad struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"ad"`
	} `json:"adGroupAd"`
	Metrics struct {
		CostMicros  string `json:"costMicros"`
		Impressions string `json:"impressions"`
		Clicks      string `json:"clicks"`
	} `json:"metrics"`
	Segments struct {
		Date string `json:"date"`
	} `json:"segments"`
}

// SearchBatch is one element of the streamed response array.
type SearchBatch struct {
	Results []SearchRow `json:"results"`
}

// StreamClient issues GAQL queries against the Google Ads API.
type StreamClient interface {
	SearchStream(ctx context.Context, query string) ([]SearchBatch, error)
}

type Client struct {
	endpoint   string
	customerID string
	creds      *Credentials
	tokens     oauth2.TokenSource
	http       *http.Client
}

// NewClient builds a REST client for the configured customer, minting access
// tokens from the refresh token in the credentials blob.
func NewClient(cfg *config.Config) (*Client, error) {
	creds, err := LoadCredentials(cfg.Google.ConfigPath)
	if err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	return &Client{
		endpoint:   cfg.Google.Endpoint,
		customerID: cfg.Google.CustomerID,
		creds:      creds,
		tokens:     oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: creds.RefreshToken}),
		http:       &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// SearchStream runs a GAQL query and returns every streamed batch.
func (c *Client) SearchStream(ctx context.Context, query string) ([]SearchBatch, error) {
	requestURL := fmt.Sprintf("%s/customers/%s/googleAds:searchStream", c.endpoint, c.customerID)

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, errors.Wrap(err, "googleads: encoding query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "googleads: building request")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, errors.Wrap(err, "googleads: minting access token")
	}
	token.SetAuthHeader(req)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.creds.DeveloperToken)
	if c.creds.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.creds.LoginCustomerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "googleads: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "googleads: reading response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(body, resp.StatusCode)
	}

	batches := make([]SearchBatch, 0)
	if err := json.Unmarshal(body, &batches); err != nil {
		logrus.WithError(err).Error("googleads: failed to decode searchStream response")
		return nil, errors.Wrap(err, "googleads: decoding response")
	}

	return batches, nil
}

func decodeError(body []byte, status int) error {
	var payload struct {
		Error *Error `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		payload.Error.HTTPStatus = status
		return payload.Error
	}

	// searchStream errors arrive wrapped in a one-element array.
	var batch []struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 && batch[0].Error != nil {
		batch[0].Error.HTTPStatus = status
		return batch[0].Error
	}

	return errors.Errorf("googleads: unexpected status %d: %s", status, string(body))
}
