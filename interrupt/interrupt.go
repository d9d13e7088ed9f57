/*
Package interrupt turns Ctrl+C into a clean stop.

A Coordinator owns the final save of one store. It is either Running or
ShuttingDown, and moves to ShuttingDown exactly once: on the first signal, or
when the program finishes on its own and calls Finish. Whoever wins that move
performs the save; the other side waits for it.
*/
package interrupt

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"go.uber.org/zap"
)

// ErrShuttingDown is returned by a guarded store once the final save has
// been claimed.
var ErrShuttingDown = errors.New("interrupt: shutting down, record refused")

type State int32

const (
	Running State = iota
	ShuttingDown
)

func (s State) String() string {
	if s == ShuttingDown {
		return "shutting-down"
	}
	return "running"
}

// Saver is the store a Coordinator protects.
type Saver interface {
	Save() error
}

type Coordinator struct {
	state       atomic.Int32
	interrupted atomic.Bool
	store       Saver
	cancel      context.CancelFunc
	signals     chan os.Signal
	done        chan struct{}
	stop        chan struct{}
	stopped     sync.Once
	appends     sync.RWMutex
	saveErr     error
	options
}

func New(store Saver, opts ...Option) *Coordinator {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Coordinator{
		store:   store,
		cancel:  func() {},
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		options: options,
	}
}

/*
Watch starts listening for the configured signals and returns a context that
is cancelled when one arrives. The crawl must run under that context so that
no fetch starts after an interrupt. Watch must be called once.
*/
func (c *Coordinator) Watch(ctx context.Context) context.Context {
	ctx, c.cancel = context.WithCancel(ctx)
	signal.Notify(c.signals, c.options.signals...)
	go c.loop()
	return ctx
}

func (c *Coordinator) loop() {
	for {
		select {
		case sig := <-c.signals:
			c.logger.Info("signal received", zap.String("signal", sig.String()))
			c.Interrupt()
		case <-c.stop:
			return
		}
	}
}

/*
Interrupt saves the store and ends the process: exit code 0 when the save
succeeded, 1 otherwise. It does nothing once the coordinator is shutting
down.
*/
func (c *Coordinator) Interrupt() {
	if !c.state.CompareAndSwap(int32(Running), int32(ShuttingDown)) {
		c.logger.Debug("already shutting down, signal ignored")
		return
	}
	c.interrupted.Store(true)
	c.logger.Warn("interrupted, saving before exit")
	c.cancel()

	code := 0
	if err := c.save(); err != nil {
		c.logger.Error("save on interrupt failed", zap.Error(err))
		code = 1
	}
	c.exit(code)
}

// Finish performs the final save of a run that ended on its own. If an
// interrupt got there first, Finish waits for its save and returns its result.
func (c *Coordinator) Finish() error {
	if c.state.CompareAndSwap(int32(Running), int32(ShuttingDown)) {
		return c.save()
	}
	<-c.done
	return c.saveErr
}

func (c *Coordinator) save() error {
	defer close(c.done)
	// appends already admitted finish first; later ones see ShuttingDown
	c.appends.Lock()
	c.appends.Unlock()
	c.saveErr = c.store.Save()
	return c.saveErr
}

/*
Guard wraps the store the crawl appends to. An append either lands before the
final save starts, and is part of it, or is refused with ErrShuttingDown. A
successful append is therefore never lost to an interrupt.
*/
func (c *Coordinator) Guard(s spider.Storage) spider.Storage {
	return &guarded{Storage: s, c: c}
}

type guarded struct {
	spider.Storage
	c *Coordinator
}

func (g *guarded) Append(rec *spider.Record) error {
	g.c.appends.RLock()
	defer g.c.appends.RUnlock()
	if g.c.State() != Running {
		return ErrShuttingDown
	}
	return g.Storage.Append(rec)
}

// Interrupted reports whether a signal, not Finish, ended the run.
func (c *Coordinator) Interrupted() bool {
	return c.interrupted.Load()
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Done is closed once the final save has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Stop releases the signal handlers. The process gets the default Ctrl+C
// behaviour back.
func (c *Coordinator) Stop() {
	c.stopped.Do(func() {
		signal.Stop(c.signals)
		close(c.stop)
	})
}
