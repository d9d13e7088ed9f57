package engine

import (
	"github.com/sim0n-says/AnalyseFauneQuebec/parse/faunequebec"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"go.uber.org/zap"
)

type Option func(opts *options)

type options struct {
	WorkCount       int            // detail pages fetched at once
	Fetcher         spider.Fetcher
	Logger          *zap.Logger
	Storage         spider.Storage
	Site            faunequebec.Site
	Policy          ErrorPolicy
	CheckpointEvery int // save after this many appends, 0 for never
	parse           ParseFunc
}

// ParseFunc turns a fetched detail page into a record.
type ParseFunc func(body []byte, url string) (*spider.Record, error)

var defaultOptions = options{
	WorkCount: 1,
	Logger:    zap.NewNop(),
	Site:      faunequebec.DefaultSite(),
	Policy:    Abort,
	parse:     faunequebec.ParseDetail,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithWorkCount(workCount int) Option {
	return func(opts *options) {
		if workCount > 0 {
			opts.WorkCount = workCount
		}
	}
}

func WithStorage(s spider.Storage) Option {
	return func(opts *options) {
		opts.Storage = s
	}
}

func WithSite(site faunequebec.Site) Option {
	return func(opts *options) {
		opts.Site = site
	}
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(opts *options) {
		opts.Policy = p
	}
}

func WithCheckpointEvery(n int) Option {
	return func(opts *options) {
		opts.CheckpointEvery = n
	}
}

func WithParser(parse ParseFunc) Option {
	return func(opts *options) {
		opts.parse = parse
	}
}
