package sqldb

import (
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
	driver string
	sqlURL string
}

var defaultOptions = options{
	logger: zap.NewNop(),
	driver: MySQL,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithDriver selects MySQL or SQLite.
func WithDriver(driver string) Option {
	return func(opts *options) {
		opts.driver = driver
	}
}

// WithConnURL sets the DSN handed to the driver: a MySQL DSN, or a file name
// for SQLite.
func WithConnURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}
