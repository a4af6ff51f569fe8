// Package pipeline runs the incremental fetch-and-persist loop:
// identifier sources, resume filtering, rate-limited detail fetches and
// immediate per-row writes.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"steamfetch/pkg/config"
	serrors "steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
	"steamfetch/pkg/output"
	"steamfetch/pkg/ratelimit"
	"steamfetch/pkg/source"
	"steamfetch/pkg/steam"
)

// DetailClient fetches one identifier's record.
type DetailClient interface {
	FetchDetails(appID int64) (*steam.Record, error)
}

// Pipeline orchestrates one complete fetch run.
type Pipeline struct {
	cfg     *config.Config
	client  DetailClient
	limiter ratelimit.Limiter
	logger  logger.Logger

	// now stubs the run date in tests
	now func() time.Time
}

// New creates a pipeline from configuration.
func New(cfg *config.Config, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pipeline{
		cfg:     cfg,
		client:  steam.NewClient(&cfg.Steam, log),
		limiter: ratelimit.FromConfig(cfg.RateLimit.Delay, cfg.RateLimit.Jitter),
		logger:  log,
		now:     time.Now,
	}
}

// Run loads all identifier sources and processes every category in
// order. Identifier-level failures are isolated; only filesystem errors
// or a complete absence of readable sources abort the run.
func (p *Pipeline) Run(ctx context.Context) error {
	categories, err := source.Load(p.cfg.Input.JSONFiles, p.cfg.Input.CSVFiles, p.logger)
	if err != nil {
		return err
	}

	p.logger.InfoWithFields("starting fetch run", map[string]interface{}{
		"categories": len(categories),
		"output_dir": p.cfg.Output.Directory,
	})

	for _, cat := range categories {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.runCategory(ctx, cat); err != nil {
			if serrors.IsFatal(err) {
				return err
			}
			p.logger.WithError(err).WithField("category", cat.Name).Error("category failed, continuing with next")
		}
	}

	p.logger.Info("fetch run completed")
	return nil
}

// runCategory processes one category's work queue against its output
// file.
func (p *Pipeline) runCategory(ctx context.Context, cat source.Category) error {
	date := p.now()
	path := filepath.Join(p.cfg.Output.Directory, output.Filename(cat.Name, date))

	fetched, err := output.FetchedIDs(path)
	if err != nil {
		return err
	}

	queue := make([]int64, 0, len(cat.AppIDs))
	for _, id := range cat.AppIDs {
		if !fetched[id] {
			queue = append(queue, id)
		}
	}

	p.logger.InfoWithFields("processing category", map[string]interface{}{
		"category":  cat.Name,
		"total":     len(cat.AppIDs),
		"fetched":   len(fetched),
		"remaining": len(queue),
	})

	if len(queue) == 0 {
		return nil
	}

	writer, err := output.NewWriter(p.cfg.Output.Directory, cat.Name, date)
	if err != nil {
		return err
	}
	defer writer.Close()

	for i, appID := range queue {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.limiter.Wait()

		rec, err := p.client.FetchDetails(appID)
		if err != nil {
			// Skipped identifiers are never written, so the resume
			// filter retries them naturally on the next full rerun.
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"category": cat.Name,
				"app_id":   appID,
			}).Warn("skipping identifier")
			continue
		}

		if err := writer.Append(rec); err != nil {
			return err
		}

		p.logger.InfoWithFields("record written", map[string]interface{}{
			"category": cat.Name,
			"app_id":   appID,
			"name":     rec.Name,
			"progress": i + 1,
			"queued":   len(queue),
		})
	}

	return nil
}
