package steamdb

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"steamfetch/pkg/config"
	serrors "steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
)

// BrowserFetcher renders listing pages in a headless browser so
// client-side anti-bot challenges execute before extraction. Slower and
// heavier than the cookie strategy; used when cookies are blocked.
type BrowserFetcher struct {
	cookies map[string]string
	timeout time.Duration
	logger  logger.Logger
}

// NewBrowserFetcher creates the browser strategy
func NewBrowserFetcher(cfg *config.SteamDBConfig, cookies map[string]string, log logger.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cookies: cookies,
		timeout: cfg.Timeout,
		logger:  log,
	}
}

// Name reports the strategy
func (b *BrowserFetcher) Name() string { return "browser" }

// FetchAppIDs launches a headless browser, loads the page with the
// session cookies applied, and extracts identifiers from the rendered
// DOM.
func (b *BrowserFetcher) FetchAppIDs(ctx context.Context, pageURL string) ([]int64, error) {
	b.logger.DebugWithFields("rendering listing page", map[string]interface{}{
		"url":      pageURL,
		"strategy": b.Name(),
	})

	controlURL, err := launcher.New().
		Headless(true).
		NoSandbox(true).
		Launch()
	if err != nil {
		return nil, serrors.NewFetchError(0, "failed to launch browser: %v", err)
	}

	brw := rod.New().ControlURL(controlURL).Context(ctx)
	if err := brw.Connect(); err != nil {
		return nil, serrors.NewFetchError(0, "failed to connect to browser: %v", err)
	}
	defer brw.Close()

	if len(b.cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(b.cookies))
		for key, value := range b.cookies {
			params = append(params, &proto.NetworkCookieParam{
				Name:   key,
				Value:  value,
				Domain: ".steamdb.info",
			})
		}
		if err := brw.SetCookies(params); err != nil {
			b.logger.WithError(err).Warn("failed to apply cookies to browser session")
		}
	}

	page, err := brw.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, serrors.NewFetchError(0, "failed to open page %s: %v", pageURL, err)
	}
	defer page.Close()

	page = page.Timeout(b.timeout)
	if err := page.WaitLoad(); err != nil {
		return nil, serrors.NewFetchError(0, "page %s did not finish loading: %v", pageURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, serrors.NewFetchError(0, "failed to read rendered DOM: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, serrors.NewFetchError(0, "failed to parse rendered HTML: %v", err)
	}

	ids := extractAppIDs(doc)
	b.logger.InfoWithFields("listing page rendered", map[string]interface{}{
		"url":      pageURL,
		"app_ids":  len(ids),
		"strategy": b.Name(),
	})
	return ids, nil
}
