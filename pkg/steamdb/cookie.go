package steamdb

import (
	"bytes"
	"context"
	"net/http"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"steamfetch/pkg/config"
	serrors "steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
)

// CookieFetcher fetches listing pages over plain HTTP with the loaded
// session cookies attached.
type CookieFetcher struct {
	http   *resty.Client
	logger logger.Logger
}

// NewCookieFetcher creates the cookie strategy over a resty client with
// the cloudflare bypass transport.
func NewCookieFetcher(cfg *config.SteamDBConfig, cookies map[string]string, log logger.Logger) *CookieFetcher {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeaders(map[string]string{
		"User-Agent":                browser.Chrome(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "zh-CN,zh;q=0.9,en;q=0.8",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
	})

	for key, value := range cookies {
		client.SetCookie(&http.Cookie{
			Name:   key,
			Value:  value,
			Domain: ".steamdb.info",
		})
	}

	return &CookieFetcher{http: client, logger: log}
}

// Name reports the strategy
func (c *CookieFetcher) Name() string { return "cookie" }

// FetchAppIDs loads one listing page and extracts its identifiers.
// A 403 or an anti-bot interstitial is an auth error: the caller is
// expected to switch to the browser strategy and rerun.
func (c *CookieFetcher) FetchAppIDs(ctx context.Context, pageURL string) ([]int64, error) {
	c.logger.DebugWithFields("fetching listing page", map[string]interface{}{
		"url":      pageURL,
		"strategy": c.Name(),
	})

	res, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, serrors.NewFetchError(0, "request to %s failed: %v", pageURL, err)
	}

	status := res.StatusCode()
	body := res.Body()

	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return nil, serrors.NewAuthError(status, "steamdb blocked the request (status %d), switch to the browser strategy or refresh cookies", status)
	}
	if status != http.StatusOK {
		return nil, serrors.NewFetchError(status, "unexpected status %d from %s", status, pageURL)
	}
	if blocked(string(body)) {
		return nil, serrors.NewAuthError(status, "steamdb served an anti-bot challenge, switch to the browser strategy or refresh cookies")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, serrors.NewFetchError(status, "failed to parse listing HTML: %v", err)
	}

	ids := extractAppIDs(doc)
	c.logger.InfoWithFields("listing page fetched", map[string]interface{}{
		"url":      pageURL,
		"app_ids":  len(ids),
		"strategy": c.Name(),
	})
	return ids, nil
}
