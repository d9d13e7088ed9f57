package sqlstorage

import (
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	driver     string
	sqlURL     string
	table      string
	runID      string
	BatchCount int // rows buffered before an insert
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	table:      DefaultTable,
	BatchCount: 20,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithDriver(driver string) Option {
	return func(opts *options) {
		opts.driver = driver
	}
}

func WithSqlURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

func WithTable(table string) Option {
	return func(opts *options) {
		if table != "" {
			opts.table = table
		}
	}
}

// WithRunID tags every row written by this store.
func WithRunID(id string) Option {
	return func(opts *options) {
		opts.runID = id
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		if batchCount > 0 {
			opts.BatchCount = batchCount
		}
	}
}
