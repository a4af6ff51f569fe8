package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"steamfetch/pkg/auth"
	"steamfetch/pkg/config"
	serrors "steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
	"steamfetch/pkg/ratelimit"
	"steamfetch/pkg/steamdb"
)

var (
	// Scrape command flags
	strategy       string
	cookieFile     string
	collectionName string
	collectionFile string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <listing-url> [listing-url...]",
	Short: "Collect game identifiers from SteamDB listing pages",
	Long: `Scrape game identifiers from SteamDB listing pages and merge them into
a JSON collections file that the fetch command can consume.

Two access strategies exist, selected up front with --strategy (there is
no automatic failover within a run):

  cookie  - authenticated HTTP requests with cookies from the cookie
            store (keyring, encrypted store, cookies.txt or environment)
  browser - a headless browser that renders the page, executing any
            client-side anti-bot challenge; slower, used when the
            cookie strategy is blocked

When the cookie strategy is blocked (403 or challenge page), rerun with
--strategy browser.`,
	Example: `  # Scrape a publisher listing with stored cookies
  steamfetch scrape "https://steamdb.info/publisher/Valve/?displayOnly=Game" --collection Valve

  # Fall back to the headless browser after a block
  steamfetch scrape "https://steamdb.info/publisher/Valve/?displayOnly=Game" --collection Valve --strategy browser

  # Scrape the pages listed under steamdb.pages in the config file
  steamfetch scrape`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&strategy, "strategy", "", "page access strategy: cookie or browser")
	scrapeCmd.Flags().StringVar(&cookieFile, "cookie-file", "", "path to a cookies.txt file")
	scrapeCmd.Flags().StringVar(&collectionName, "collection", "scraped", "collection name for the scraped identifiers")
	scrapeCmd.Flags().StringVar(&collectionFile, "collection-file", "json-config/scraped.json", "JSON collections file to merge results into")
}

func runScrape(pages []string) {
	flags := make(map[string]interface{})
	if strategy != "" {
		flags["strategy"] = strategy
	}
	if cookieFile != "" {
		flags["cookie-file"] = cookieFile
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		logger.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		logger.WithError(err).Error("failed to initialize logger")
		os.Exit(1)
	}
	log := logger.GetLogger()

	// Pages from the command line win over the configured list.
	if len(pages) == 0 {
		pages = cfg.SteamDB.Pages
	}
	if len(pages) == 0 {
		log.Error("no listing pages given on the command line or in steamdb.pages")
		os.Exit(1)
	}

	// Cookies are loaded once at startup and never mutated by the run.
	cookieMgr, err := auth.NewManager(cfg.SteamDB.CookieFile)
	if err != nil {
		log.WithError(err).Error("failed to initialize cookie store")
		os.Exit(1)
	}
	cookies, store, err := cookieMgr.Load()
	if err != nil {
		log.WithError(err).Warn("no steamdb cookies found, proceeding unauthenticated")
		cookies = map[string]string{}
	} else {
		log.InfoWithFields("loaded steamdb cookies", map[string]interface{}{
			"store":   store,
			"cookies": len(cookies),
		})
	}

	fetcher, err := steamdb.New(&cfg.SteamDB, cookies, log)
	if err != nil {
		log.WithError(err).Error("failed to build page fetcher")
		os.Exit(1)
	}

	// The strategy is a static choice reported at startup.
	log.InfoWithFields("starting steamdb scrape", map[string]interface{}{
		"strategy": fetcher.Name(),
		"pages":    len(pages),
	})

	limiter := ratelimit.FromConfig(cfg.RateLimit.Delay, cfg.RateLimit.Jitter)
	ctx := context.Background()

	var all []int64
	for i, page := range pages {
		if i > 0 {
			limiter.Wait()
		}

		ids, err := fetcher.FetchAppIDs(ctx, page)
		if err != nil {
			if serrors.IsAuth(err) {
				log.WithError(err).Error("steamdb blocked the cookie strategy; rerun with --strategy browser")
				os.Exit(1)
			}
			log.WithError(err).WithField("url", page).Warn("skipping listing page")
			continue
		}
		all = append(all, ids...)
	}

	if len(all) == 0 {
		log.Error("no identifiers scraped")
		os.Exit(1)
	}

	if err := steamdb.WriteCollection(collectionFile, collectionName, all); err != nil {
		log.WithError(err).Error("failed to write collections file")
		os.Exit(1)
	}

	log.InfoWithFields("scrape completed", map[string]interface{}{
		"collection": collectionName,
		"file":       collectionFile,
		"app_ids":    len(all),
	})
}
