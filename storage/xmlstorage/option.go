package xmlstorage

import (
	"os"

	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
	path   string
	root   string
	perm   os.FileMode
}

var defaultOptions = options{
	logger: zap.NewNop(),
	root:   DefaultRoot,
	perm:   0o644,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithPath sets the document every Save replaces.
func WithPath(path string) Option {
	return func(opts *options) {
		opts.path = path
	}
}

func WithRoot(root string) Option {
	return func(opts *options) {
		if root != "" {
			opts.root = root
		}
	}
}

func WithPerm(perm os.FileMode) Option {
	return func(opts *options) {
		opts.perm = perm
	}
}
