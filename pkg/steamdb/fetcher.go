// Package steamdb fetches game identifiers from SteamDB listing pages.
// Two access strategies exist: cookie-authenticated HTTP and a headless
// browser. The strategy is a static configuration choice with no in-run
// failover; a blocked cookie run surfaces an auth error telling the
// operator to switch.
package steamdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"steamfetch/pkg/config"
	"steamfetch/pkg/logger"
)

// PageFetcher retrieves the game identifiers listed on one SteamDB page.
type PageFetcher interface {
	// Name reports the strategy for startup logging
	Name() string

	// FetchAppIDs loads a listing page and extracts its app IDs
	FetchAppIDs(ctx context.Context, pageURL string) ([]int64, error)
}

// New builds the configured strategy.
func New(cfg *config.SteamDBConfig, cookies map[string]string, log logger.Logger) (PageFetcher, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	switch strings.ToLower(cfg.Strategy) {
	case "cookie":
		return NewCookieFetcher(cfg, cookies, log), nil
	case "browser":
		return NewBrowserFetcher(cfg, cookies, log), nil
	default:
		return nil, fmt.Errorf("unknown steamdb strategy %q", cfg.Strategy)
	}
}

var appLinkPattern = regexp.MustCompile(`/app/(\d+)`)

// extractAppIDs pulls identifiers out of a listing document. Listing
// rows carry a data-appid attribute; older layouts only link to
// /app/<id>/ pages.
func extractAppIDs(doc *goquery.Document) []int64 {
	var ids []int64

	doc.Find("tr[data-appid]").Each(func(_ int, row *goquery.Selection) {
		attr, ok := row.Attr("data-appid")
		if !ok {
			return
		}
		if id, err := strconv.ParseInt(strings.TrimSpace(attr), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	})

	if len(ids) == 0 {
		doc.Find(`a[href*="/app/"]`).Each(func(_ int, link *goquery.Selection) {
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			m := appLinkPattern.FindStringSubmatch(href)
			if m == nil {
				return
			}
			if id, err := strconv.ParseInt(m[1], 10, 64); err == nil && id > 0 {
				ids = append(ids, id)
			}
		})
	}

	return dedup(ids)
}

// blocked recognizes anti-bot interstitials that come back with a 200.
func blocked(body string) bool {
	return strings.Contains(body, "Access Denied") ||
		strings.Contains(body, "Checking your browser") ||
		strings.Contains(body, "cf-challenge")
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// collectionsFile mirrors the JSON config layout consumed by the fetch
// pipeline's source reader.
type collectionsFile struct {
	Collections []collection `json:"collections"`
}

type collection struct {
	Name  string  `json:"name"`
	Added []int64 `json:"added"`
}

// WriteCollection merges scraped identifiers into a JSON collections
// file, creating it when absent. IDs are merged into an existing
// collection of the same name, deduplicated.
func WriteCollection(path, name string, ids []int64) error {
	var file collectionsFile
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("existing collections file %s is malformed: %w", path, err)
		}
	}

	merged := false
	for i := range file.Collections {
		if file.Collections[i].Name == name {
			file.Collections[i].Added = dedup(append(file.Collections[i].Added, ids...))
			merged = true
			break
		}
	}
	if !merged {
		file.Collections = append(file.Collections, collection{Name: name, Added: dedup(ids)})
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collections: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
