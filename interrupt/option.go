package interrupt

import (
	"os"
	"syscall"

	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	exit    func(code int)
	signals []os.Signal
}

var defaultOptions = options{
	logger:  zap.NewNop(),
	exit:    os.Exit,
	signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithExit replaces os.Exit, which ends the process after an interrupt save.
func WithExit(exit func(code int)) Option {
	return func(opts *options) {
		opts.exit = exit
	}
}

func WithSignals(sigs ...os.Signal) Option {
	return func(opts *options) {
		opts.signals = sigs
	}
}
