package steam

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamfetch/pkg/config"
	"steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
)

// mockRoundTripper intercepts outbound HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// newTestClient builds a client whose transport replays canned bodies
// keyed by request URL.
func newTestClient(responses map[string]*http.Response) *Client {
	cfg := &config.SteamConfig{
		CountryCode: "cn",
		Language:    "schinese",
		UserAgent:   "test-agent",
		Timeout:     10 * time.Second,
	}
	c := NewClient(cfg, logger.GetLogger())
	c.httpClient = &http.Client{
		Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
			if resp, ok := responses[req.URL.String()]; ok {
				return resp, nil
			}
			return newResponse(http.StatusNotFound, ""), nil
		}},
		Timeout: 10 * time.Second,
	}
	return c
}

const dotaBody = `{
	"570": {
		"success": true,
		"data": {
			"name": "Dota 2",
			"steam_appid": 570,
			"is_free": false,
			"price_overview": {
				"currency": "CNY",
				"initial": 6800,
				"final": 3400,
				"discount_percent": 50
			},
			"recommendations": {"total": 12345},
			"release_date": {"coming_soon": false, "date": "2013年7月9日"},
			"developers": ["Valve", "Hidden Path"],
			"genres": [
				{"id": "1", "description": "动作"},
				{"id": "23", "description": "免费开玩"}
			],
			"pc_requirements": {
				"minimum": "<strong>最低配置:</strong><br><ul><li>OS: Windows 7</li></ul>",
				"recommended": "<strong>推荐配置:</strong><br><ul><li>OS: Windows 10</li></ul>"
			}
		}
	}
}`

func TestFetchDetails(t *testing.T) {
	client := newTestClient(map[string]*http.Response{
		DetailsURL(570, "cn", "schinese"): newResponse(http.StatusOK, dotaBody),
	})

	rec, err := client.FetchDetails(570)
	require.NoError(t, err)

	assert.Equal(t, int64(570), rec.AppID)
	assert.Equal(t, "Dota 2", rec.Name)
	assert.Equal(t, "34.00 CNY (-50%)", rec.Price)
	assert.Equal(t, 68.0, rec.OriginalPrice)
	assert.Equal(t, "N/A", rec.ReviewRating)
	assert.Equal(t, 12345, rec.ReviewCount)
	assert.Equal(t, "2013年7月9日", rec.ReleaseDate)
	assert.Equal(t, "Valve, Hidden Path", rec.Developer)
	assert.Equal(t, "动作, 免费开玩", rec.Genre)
	assert.Equal(t, "最低配置: OS: Windows 7", rec.MinimumRequirements)
	assert.Equal(t, "推荐配置: OS: Windows 10", rec.RecommendedRequirements)
	assert.Equal(t, "https://store.steampowered.com/app/570/", rec.StoreURL)
}

func TestFetchDetailsFreeGame(t *testing.T) {
	body := `{
		"730": {
			"success": true,
			"data": {
				"name": "Counter-Strike 2",
				"is_free": true,
				"release_date": {"date": "2012年8月21日"},
				"developers": ["Valve"],
				"pc_requirements": []
			}
		}
	}`
	client := newTestClient(map[string]*http.Response{
		DetailsURL(730, "cn", "schinese"): newResponse(http.StatusOK, body),
	})

	rec, err := client.FetchDetails(730)
	require.NoError(t, err)

	assert.Equal(t, "免费", rec.Price)
	assert.Equal(t, 0.0, rec.OriginalPrice)
	// The empty-array requirements form leaves the fields blank.
	assert.Equal(t, "N/A", rec.MinimumRequirements)
	assert.Equal(t, "N/A", rec.RecommendedRequirements)
	assert.Equal(t, "N/A", rec.Genre)
}

func TestFetchDetailsPaidWithoutPriceOverview(t *testing.T) {
	body := `{
		"42": {
			"success": true,
			"data": {
				"name": "Regionless",
				"is_free": false,
				"pc_requirements": {}
			}
		}
	}`
	client := newTestClient(map[string]*http.Response{
		DetailsURL(42, "cn", "schinese"): newResponse(http.StatusOK, body),
	})

	rec, err := client.FetchDetails(42)
	require.NoError(t, err)
	assert.Equal(t, "价格信息缺失", rec.Price)
}

func TestFetchDetailsDelisted(t *testing.T) {
	client := newTestClient(map[string]*http.Response{
		DetailsURL(999, "cn", "schinese"): newResponse(http.StatusOK, `{"999": {"success": false}}`),
	})

	_, err := client.FetchDetails(999)
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
	assert.False(t, errors.IsFatal(err))
}

func TestFetchDetailsHTTPStatusErrors(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusInternalServerError} {
		client := newTestClient(map[string]*http.Response{
			DetailsURL(570, "cn", "schinese"): newResponse(status, ""),
		})

		_, err := client.FetchDetails(570)
		require.Error(t, err, "status %d", status)
		assert.True(t, errors.IsFetch(err), "status %d should be a fetch error", status)

		var fetchErr *errors.Error
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, status, fetchErr.Code)
	}
}

func TestFetchDetailsMalformedJSON(t *testing.T) {
	client := newTestClient(map[string]*http.Response{
		DetailsURL(570, "cn", "schinese"): newResponse(http.StatusOK, "<html>rate limited</html>"),
	})

	_, err := client.FetchDetails(570)
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
}

func TestFetchDetailsMissingKey(t *testing.T) {
	client := newTestClient(map[string]*http.Response{
		DetailsURL(570, "cn", "schinese"): newResponse(http.StatusOK, `{}`),
	})

	_, err := client.FetchDetails(570)
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name         string
		data         appData
		wantPrice    string
		wantOriginal float64
	}{
		{
			name:         "free game without overview",
			data:         appData{IsFree: true},
			wantPrice:    "免费",
			wantOriginal: 0,
		},
		{
			name: "full price",
			data: appData{PriceOverview: &PriceOverview{
				Currency: "CNY", Initial: 6800, Final: 6800,
			}},
			wantPrice:    "68.00 CNY",
			wantOriginal: 68,
		},
		{
			name: "discounted",
			data: appData{PriceOverview: &PriceOverview{
				Currency: "CNY", Initial: 6800, Final: 3400, DiscountPercent: 50,
			}},
			wantPrice:    "34.00 CNY (-50%)",
			wantOriginal: 68,
		},
		{
			name: "zero final is free",
			data: appData{PriceOverview: &PriceOverview{
				Currency: "CNY", Initial: 6800, Final: 0,
			}},
			wantPrice:    "免费",
			wantOriginal: 68,
		},
		{
			name: "formatted string fallback",
			data: appData{PriceOverview: &PriceOverview{
				Currency: "CNY", Initial: 0, Final: 5000, InitialFormatted: "¥ 50",
			}},
			wantPrice:    "50.00 CNY",
			wantOriginal: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, original := formatPrice(&tt.data)
			assert.Equal(t, tt.wantPrice, price)
			assert.Equal(t, tt.wantOriginal, original)
		})
	}
}

func TestStripCurrencySymbols(t *testing.T) {
	assert.Equal(t, "50", StripCurrencySymbols("¥ 50"))
	assert.Equal(t, "9.99", StripCurrencySymbols("$9.99 USD"))
	assert.Equal(t, "50", StripCurrencySymbols("50 CNY"))
}

func TestStripHTML(t *testing.T) {
	in := "<strong>最低配置:</strong><br/><ul><li>OS: Windows 7</li>\n<li>内存: 4 GB</li></ul>"
	assert.Equal(t, "最低配置: OS: Windows 7 内存: 4 GB", stripHTML(in))
}
