package metaclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-collector/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-collector/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client interface {
	GetAdAccounts(ctx context.Context) ([]metadomain.AdAccount, error)
	GetInsights(ctx context.Context, accountID string, day time.Time) (*metadomain.InsightsPage, error)
	GetInsightsPage(ctx context.Context, pageURL string) (*metadomain.InsightsPage, error)
}

type MetaClient struct {
	Cfg  *config.Config
	HTTP *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg:  cfg,
		HTTP: &http.Client{Timeout: 2 * time.Minute},
	}
}

// sign appends the access token and, when an app secret is configured, the
// appsecret_proof the Graph API expects from server-side callers.
func (c *MetaClient) sign(params url.Values) {
	params.Set("access_token", c.Cfg.Meta.AccessToken)

	if c.Cfg.Meta.AppSecret != "" {
		mac := hmac.New(sha256.New, []byte(c.Cfg.Meta.AppSecret))
		mac.Write([]byte(c.Cfg.Meta.AccessToken))
		params.Set("appsecret_proof", hex.EncodeToString(mac.Sum(nil)))
	}
}

func (c *MetaClient) get(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.Wrap(err, "meta: building request")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "meta: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "meta: reading response body")
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(body, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		logrus.WithError(err).Error("meta: failed to decode response JSON")
		return errors.Wrap(err, "meta: decoding response")
	}

	return nil
}

func decodeError(body []byte, status int) error {
	var payload struct {
		Error *metadomain.Error `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		payload.Error.HTTPStatus = status
		return payload.Error
	}

	return errors.Errorf("meta: unexpected status %d: %s", status, string(body))
}
