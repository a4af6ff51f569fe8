// Package steam fetches per-game metadata from the storefront
// appdetails API and turns it into flat output records.
package steam

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"steamfetch/pkg/config"
	"steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
)

// Client is the storefront API client. Fetching a record has no side
// effect beyond the outbound request.
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	countryCode string
	language    string
	logger      logger.Logger
}

// NewClient creates a storefront client from configuration.
func NewClient(cfg *config.SteamConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "application/json,text/html;q=0.9,*/*;q=0.8",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		},
		countryCode: cfg.CountryCode,
		language:    cfg.Language,
		logger:      log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchDetails fetches one identifier's details and extracts a Record.
// Any failure is a fetch error: the caller skips the identifier and
// moves on, it is never retried within the run.
func (c *Client) FetchDetails(appID int64) (*Record, error) {
	url := DetailsURL(appID, c.countryCode, c.language)

	c.logger.DebugWithFields("fetching app details", map[string]interface{}{
		"app_id": appID,
		"url":    url,
	})

	var response detailsResponse
	if err := c.getJSON(url, &response); err != nil {
		return nil, err
	}

	entry, ok := response[strconv.FormatInt(appID, 10)]
	if !ok {
		return nil, errors.NewFetchError(0, "appdetails response missing app %d", appID)
	}
	if !entry.Success {
		return nil, errors.NewFetchError(0, "app %d unavailable or delisted", appID)
	}

	return extractRecord(appID, &entry.Data), nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(url string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return errors.NewFetchError(0, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewFetchError(0, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	// A 429 or 403 here is a fetch error like any other: the identifier
	// is skipped, there is no retry state machine.
	if resp.StatusCode != http.StatusOK {
		return errors.NewFetchError(resp.StatusCode, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewFetchError(resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"body_preview": preview,
		})
		return errors.NewFetchError(resp.StatusCode, "malformed JSON response: %v", err)
	}

	return nil
}

// extractRecord flattens the appdetails payload into an output record.
func extractRecord(appID int64, data *appData) *Record {
	rec := &Record{
		AppID: appID,
		Name:  orNA(data.Name),
		// The appdetails endpoint does not expose a positive-review
		// ratio, so the rating is always recorded as unavailable.
		ReviewRating: "N/A",
		ReviewCount:  data.Recommendations.Total,
		ReleaseDate:  orNA(strings.TrimSpace(data.ReleaseDate.Date)),
		Developer:    orNA(strings.Join(data.Developers, ", ")),
		StoreURL:     StoreURL(appID),
	}

	rec.Price, rec.OriginalPrice = formatPrice(data)

	genres := make([]string, 0, len(data.Genres))
	for _, g := range data.Genres {
		if g.Description != "" {
			genres = append(genres, g.Description)
		}
	}
	rec.Genre = orNA(strings.Join(genres, ", "))

	var reqs pcRequirements
	// Tolerate the empty-array form; requirements simply stay blank.
	_ = json.Unmarshal(data.PCRequirements, &reqs)
	rec.MinimumRequirements = orNA(stripHTML(reqs.Minimum))
	rec.RecommendedRequirements = orNA(stripHTML(reqs.Recommended))

	return rec
}

// formatPrice renders the current price string and the original price in
// whole currency units from the minor-unit price overview.
func formatPrice(data *appData) (string, float64) {
	p := data.PriceOverview
	if p == nil {
		if data.IsFree {
			return "免费", 0
		}
		return "价格信息缺失", 0
	}

	original := float64(p.Initial) / 100
	final := float64(p.Final) / 100

	// Some regional responses omit the minor-unit fields and only carry
	// formatted strings like "¥ 50".
	if p.Initial == 0 && p.InitialFormatted != "" {
		if v, err := strconv.ParseFloat(StripCurrencySymbols(p.InitialFormatted), 64); err == nil {
			original = v
		}
	}

	switch {
	case p.Final == 0:
		return "免费", original
	case p.DiscountPercent > 0:
		return fmt.Sprintf("%.2f %s (-%d%%)", final, p.Currency, p.DiscountPercent), original
	default:
		return fmt.Sprintf("%.2f %s", final, p.Currency), original
	}
}

var currencySymbols = strings.NewReplacer("¥", "", "$", "", "€", "", "£", "", "₩", "", "USD", "", "CNY", "")

// StripCurrencySymbols removes currency markers and whitespace from a
// formatted price like "¥ 50" or "$9.99 USD".
func StripCurrencySymbols(s string) string {
	return strings.TrimSpace(currencySymbols.Replace(s))
}

var (
	brTags   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTags = regexp.MustCompile(`<[^>]+>`)
	multiWS  = regexp.MustCompile(`\s+`)
)

// stripHTML flattens the requirements HTML fragments into single-line
// plain text.
func stripHTML(s string) string {
	s = brTags.ReplaceAllString(s, " ")
	s = htmlTags.ReplaceAllString(s, " ")
	s = multiWS.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
