package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"forecast-scraper/analyzer"
	"forecast-scraper/datasource"
	"forecast-scraper/extractor"
	"forecast-scraper/markup"
	"forecast-scraper/models"
	"forecast-scraper/persist"
	"forecast-scraper/report"
	"forecast-scraper/tabulate"

	"github.com/robfig/cron/v3"
)

// Archive stores finished runs
type Archive interface {
	SaveRun(ctx context.Context, run models.Run) (int64, error)
	PruneOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Options configures a Collector
type Options struct {
	Location   string
	Markup     extractor.Markup
	OutputPath string
	Sheet      string
	Archive    Archive       // nil disables archiving
	Retention  time.Duration // zero keeps every archived run
	Report     io.Writer     // nil disables the console report
}

// cachingSource is implemented by page sources that may serve a page fetched
// by an earlier run
type cachingSource interface {
	FetchCachedPage(ctx context.Context) ([]byte, time.Time, bool, error)
	Invalidate()
}

// Collector runs the forecast pipeline against one page source
type Collector struct {
	source datasource.PageSource
	opts   Options
	mutex  sync.Mutex
	now    func() time.Time
}

// NewCollector creates a collector for the given source
func NewCollector(source datasource.PageSource, opts Options) *Collector {
	return &Collector{
		source: source,
		opts:   opts,
		now:    time.Now,
	}
}

// Run fetches the page once and takes it through extraction, tabulation,
// derivation, the spreadsheet write, the archive and the report. Runs never
// overlap; a second caller waits for the first to finish. A page served from
// a cache keeps its original fetch time and is not archived again.
func (c *Collector) Run(ctx context.Context) (models.Run, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.run(ctx)
}

// Refresh works like Run but never reuses a cached page
func (c *Collector) Refresh(ctx context.Context) (models.Run, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if cs, ok := c.source.(cachingSource); ok {
		cs.Invalidate()
	}
	return c.run(ctx)
}

func (c *Collector) run(ctx context.Context) (models.Run, error) {
	logger := slog.With("source", c.source.Name())

	body, fetchedAt, cached, err := c.fetch(ctx)
	if err != nil {
		return models.Run{}, err
	}
	if cached {
		logger.Info("reusing cached forecast page", "url", c.source.URL(), "fetched_at", fetchedAt)
	} else {
		logger.Info("fetched forecast page", "url", c.source.URL(), "bytes", len(body))
	}

	doc, err := markup.Parse(bytes.NewReader(body))
	if err != nil {
		return models.Run{}, err
	}

	items, err := extractor.Extract(doc, c.opts.Markup)
	if err != nil {
		return models.Run{}, err
	}
	logger.Debug("extracted forecast items", "items", len(items))

	table := tabulate.FromItems(items)
	if err := analyzer.Derive(table); err != nil {
		return models.Run{}, err
	}
	summary := analyzer.Summarize(table)

	run := models.Run{
		Location:        c.opts.Location,
		SourceURL:       c.source.URL(),
		FetchedAt:       fetchedAt,
		MeanTemperature: summary.MeanTemperature,
		Table:           *table,
	}

	if err := persist.WriteXLSX(c.opts.OutputPath, c.opts.Sheet, table); err != nil {
		return models.Run{}, err
	}
	logger.Info("wrote forecast table", "path", c.opts.OutputPath, "sheet", c.opts.Sheet, "rows", table.Len())

	if c.opts.Archive != nil && !cached {
		id, err := c.opts.Archive.SaveRun(ctx, run)
		if err != nil {
			return models.Run{}, fmt.Errorf("failed to archive run: %w", err)
		}
		run.ID = id
		logger.Info("archived run", "run_id", id)

		if c.opts.Retention > 0 {
			pruned, err := c.opts.Archive.PruneOlderThan(ctx, c.opts.Retention)
			if err != nil {
				logger.Warn("failed to prune archived runs", "error", err)
			} else if pruned > 0 {
				logger.Info("pruned archived runs", "count", pruned)
			}
		}
	}

	if c.opts.Report != nil {
		if err := report.Print(c.opts.Report, run, summary); err != nil {
			logger.Warn("failed to print report", "error", err)
		}
	}

	return run, nil
}

func (c *Collector) fetch(ctx context.Context) ([]byte, time.Time, bool, error) {
	if cs, ok := c.source.(cachingSource); ok {
		body, fetchedAt, cached, err := cs.FetchCachedPage(ctx)
		return body, fetchedAt.UTC(), cached, err
	}
	body, err := c.source.FetchPage(ctx)
	return body, c.now().UTC(), false, err
}

// Schedule runs the pipeline on a standard five-field cron spec until the
// returned stop function is called or ctx is done. A run that is still going
// when the next one is due causes that one to be skipped.
func (c *Collector) Schedule(ctx context.Context, spec string) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := sched.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		run, err := c.Run(ctx)
		if err != nil {
			slog.Error("scheduled run failed", "error", err)
			return
		}
		slog.Info("scheduled run complete", "run_id", run.ID, "rows", run.Table.Len())
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	sched.Start()
	slog.Info("schedule started", "spec", spec)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-sched.Stop().Done()
		})
	}
	go func() {
		<-ctx.Done()
		stop()
	}()

	return stop, nil
}
