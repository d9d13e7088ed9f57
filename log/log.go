package log

import (
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Plugin is one log destination.
type Plugin = zapcore.Core

func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// NewFilePlugin writes to a rotated file. lumberjack has no Sync, so the
// returned closer must be closed before exit to flush the file.
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type closers []io.Closer

func (c closers) Close() error {
	var err error
	for _, cl := range c {
		err = multierr.Append(err, cl.Close())
	}
	return err
}

/*
Setup builds the process logger from a level name ("debug", "INFO", ...) and
an optional log file. Errors and above go to stderr, everything else to
stdout, and all of it to the file as well when one is given. The closer
flushes the file.
*/
func Setup(level, file string) (*zap.Logger, io.Closer, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	plugins := consolePlugins(lvl)
	var c closers
	if file != "" {
		p, closer := NewFilePlugin(file, lvl)
		plugins = append(plugins, p)
		c = append(c, closer)
	}
	return NewLogger(zapcore.NewTee(plugins...)), c, nil
}

// consolePlugins splits the console output at ErrorLevel.
func consolePlugins(lvl zapcore.Level) []Plugin {
	out := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= lvl && l < zapcore.ErrorLevel
	})
	errs := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= lvl && l >= zapcore.ErrorLevel
	})
	return []Plugin{NewStdoutPlugin(out), NewStderrPlugin(errs)}
}
