package faunequebec

import (
	"context"
	"fmt"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"go.uber.org/zap"
)

// Walker enumerates the fact sheets of the search listing. It keeps no state
// between calls, so a walk can be restarted at any page.
type Walker struct {
	fetcher spider.Fetcher
	site    Site
	logger  *zap.Logger
}

func NewWalker(f spider.Fetcher, site Site, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{fetcher: f, site: site, logger: logger}
}

func (w *Walker) Site() Site {
	return w.site
}

// TotalPages fetches the first listing page and reads the pager.
func (w *Walker) TotalPages(ctx context.Context) (int, error) {
	body, err := w.fetcher.Get(ctx, w.site.PageURL(1))
	if err != nil {
		return 0, fmt.Errorf("listing page 1: %w", err)
	}
	return TotalPages(body), nil
}

// PageLinks fetches listing page page and returns its detail links.
func (w *Walker) PageLinks(ctx context.Context, page int) ([]string, error) {
	body, err := w.fetcher.Get(ctx, w.site.PageURL(page))
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", page, err)
	}
	links := DetailLinks(body, w.site)
	w.logger.Info("listing page parsed", zap.Int("page", page), zap.Int("links", len(links)))
	return links, nil
}

// DiscoverAll walks every listing page in order and concatenates their links.
// The first failing page stops the walk.
func (w *Walker) DiscoverAll(ctx context.Context) ([]string, error) {
	total, err := w.TotalPages(ctx)
	if err != nil {
		return nil, err
	}
	var all []string
	for page := 1; page <= total; page++ {
		links, err := w.PageLinks(ctx, page)
		if err != nil {
			return all, err
		}
		all = append(all, links...)
	}
	return all, nil
}
