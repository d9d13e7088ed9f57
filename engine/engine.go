// Package engine drives one crawl: it walks the listing, fetches and parses
// every fact sheet and appends the records to the configured storage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sim0n-says/AnalyseFauneQuebec/parse/faunequebec"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrorPolicy decides what a failed page does to the run.
type ErrorPolicy int

const (
	Abort ErrorPolicy = iota // stop the crawl on the first failure
	Skip                     // log the page and go on
)

var ErrInvalidPolicy = errors.New("invalid error policy")

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	}
	return Abort, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

func (p ErrorPolicy) String() string {
	if p == Skip {
		return "skip"
	}
	return "abort"
}

// Stats summarizes a run.
type Stats struct {
	Pages   int // listing pages walked
	Records int // records appended
	Skipped int // pages given up under the skip policy
}

type Crawler struct {
	walker   *faunequebec.Walker
	stats    Stats
	appended int
	options
}

func NewEngine(opts ...Option) (*Crawler, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Fetcher == nil {
		return nil, errors.New("engine: no fetcher")
	}
	if options.Storage == nil {
		return nil, errors.New("engine: no storage")
	}
	if options.Policy != Abort && options.Policy != Skip {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, options.Policy)
	}
	e := &Crawler{options: options}
	e.walker = faunequebec.NewWalker(options.Fetcher, options.Site, options.Logger.Named("walker"))
	return e, nil
}

/*
Run crawls every listing page in order.

Records reach the storage in discovery order. Run does not do the final save:
whoever owns the storage saves it once Run returns, whatever the outcome. A
failure on the first listing page always ends the run; later failures follow
the error policy. Cancelling ctx stops the run before the next fetch.
*/
func (e *Crawler) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		e.Logger.Info("crawl finished",
			zap.Int("pages", e.stats.Pages),
			zap.Int("records", e.stats.Records),
			zap.Int("skipped", e.stats.Skipped),
			zap.Duration("took", time.Since(start)),
		)
	}()

	total, err := e.walker.TotalPages(ctx)
	if err != nil {
		return err
	}
	e.Logger.Info("listing discovered", zap.Int("pages", total))

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		links, err := e.walker.PageLinks(ctx, page)
		if err != nil {
			if page == 1 || !e.skippable(ctx, err) {
				return err
			}
			e.stats.Skipped++
			e.Logger.Warn("listing page skipped", zap.Int("page", page), zap.Error(err))
			continue
		}
		e.stats.Pages++
		if err := e.crawlPage(ctx, links); err != nil {
			return err
		}
	}
	return nil
}

func (e *Crawler) Stats() Stats {
	return e.stats
}

type outcome struct {
	rec *spider.Record
	err error
}

/*
crawlPage fetches links with at most WorkCount requests in flight and appends
each record as soon as every link before it has been handled. A fetch slot is
only handed back once its record has been appended, so with one worker every
record is stored before the next fetch starts. Nothing is appended once ctx
is done.
*/
func (e *Crawler) crawlPage(ctx context.Context, links []string) error {
	results := make([]chan outcome, len(links))
	for i := range results {
		results[i] = make(chan outcome, 1)
	}

	fctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(fctx)
	sem := semaphore.NewWeighted(int64(e.WorkCount))
	var cause error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i, link := range links {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] <- outcome{err: err}
				continue
			}
			g.Go(func() error {
				rec, err := e.detail(gctx, link)
				results[i] <- outcome{rec: rec, err: err}
				if err != nil && !e.skippable(ctx, err) {
					return err
				}
				return nil
			})
		}
		cause = g.Wait()
	}()
	defer func() {
		cancel()
		<-finished
	}()

	for i, link := range links {
		out := <-results[i]
		if out.err != nil {
			if !e.skippable(ctx, out.err) {
				if ctx.Err() == nil && isCancellation(out.err) {
					// cancelled because a sibling failed: report that failure
					cancel()
					<-finished
					if cause != nil {
						return cause
					}
				}
				return out.err
			}
			e.stats.Skipped++
			e.Logger.Warn("fact sheet skipped", zap.String("url", link), zap.Error(out.err))
			sem.Release(1)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.append(out.rec); err != nil {
			return err
		}
		sem.Release(1)
	}
	return nil
}

func (e *Crawler) detail(ctx context.Context, url string) (*spider.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := e.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	rec, err := e.parse(body, url)
	if err != nil {
		return nil, err
	}
	e.Logger.Info("fact sheet parsed",
		zap.String("slug", rec.Slug),
		zap.String("url", url),
		zap.Int("fields", rec.Fields.Len()),
	)
	return rec, nil
}

func (e *Crawler) append(rec *spider.Record) error {
	if err := e.Storage.Append(rec); err != nil {
		return fmt.Errorf("append %s: %w", rec.SourceURL, err)
	}
	e.appended++
	e.stats.Records++
	if e.CheckpointEvery > 0 && e.appended%e.CheckpointEvery == 0 {
		if err := e.Storage.Save(); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
		e.Logger.Debug("checkpoint saved", zap.Int("records", e.appended))
	}
	return nil
}

// skippable reports whether err may be passed over. Cancellation never is.
func (e *Crawler) skippable(ctx context.Context, err error) bool {
	if e.Policy != Skip || ctx.Err() != nil {
		return false
	}
	return !isCancellation(err)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
