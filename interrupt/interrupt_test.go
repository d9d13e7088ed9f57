package interrupt

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage/xmlstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSaver struct {
	saves atomic.Int32
	err   error
}

func (s *countingSaver) Save() error {
	s.saves.Add(1)
	return s.err
}

func exitRecorder() (func(int), <-chan int) {
	codes := make(chan int, 4)
	return func(code int) { codes <- code }, codes
}

func waitCode(t *testing.T, codes <-chan int) int {
	t.Helper()
	select {
	case code := <-codes:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("exit was not called")
		return -1
	}
}

func TestInterruptSavesAppendedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faune_info.xml")
	store, err := xmlstorage.New(xmlstorage.WithPath(path))
	require.NoError(t, err)

	exit, codes := exitRecorder()
	c := New(store, WithExit(exit))
	ctx := c.Watch(context.Background())
	defer c.Stop()

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(&spider.Record{Slug: "espece", Fields: spider.NewFields()}))
	}

	c.signals <- syscall.SIGINT
	assert.Equal(t, 0, waitCode(t, codes))
	assert.Equal(t, ShuttingDown, c.State())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, c.Interrupted())

	recs, err := xmlstorage.Load(path)
	require.NoError(t, err)
	assert.Len(t, recs, n)
}

func TestSecondSignalIgnored(t *testing.T) {
	s := &countingSaver{}
	exit, codes := exitRecorder()
	c := New(s, WithExit(exit))
	c.Watch(context.Background())
	defer c.Stop()

	c.signals <- syscall.SIGINT
	waitCode(t, codes)
	c.signals <- syscall.SIGTERM
	c.Interrupt()

	assert.NoError(t, c.Finish())
	assert.EqualValues(t, 1, s.saves.Load())
	assert.Len(t, codes, 0)
}

func TestFailedSaveExitsWithOne(t *testing.T) {
	s := &countingSaver{err: errors.New("disk full")}
	exit, codes := exitRecorder()
	c := New(s, WithExit(exit))

	c.Interrupt()
	assert.Equal(t, 1, waitCode(t, codes))
	assert.EqualError(t, c.Finish(), "disk full")
}

func TestFinishClaimsShutdown(t *testing.T) {
	s := &countingSaver{}
	exit, codes := exitRecorder()
	c := New(s, WithExit(exit))
	ctx := c.Watch(context.Background())
	defer c.Stop()

	require.NoError(t, c.Finish())
	assert.Equal(t, ShuttingDown, c.State())
	<-c.Done()

	c.Interrupt()
	assert.EqualValues(t, 1, s.saves.Load())
	assert.Len(t, codes, 0)
	assert.NoError(t, ctx.Err())
	assert.False(t, c.Interrupted())
}

func TestFinishWaitsForInterruptSave(t *testing.T) {
	release := make(chan struct{})
	s := saverFunc(func() error {
		<-release
		return nil
	})
	exit, codes := exitRecorder()
	c := New(s, WithExit(exit))

	go c.Interrupt()
	require.Eventually(t, func() bool { return c.State() == ShuttingDown }, time.Second, time.Millisecond)

	finished := make(chan error, 1)
	go func() { finished <- c.Finish() }()
	select {
	case <-finished:
		t.Fatal("Finish returned before the interrupt save completed")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	assert.NoError(t, <-finished)
	assert.Equal(t, 0, waitCode(t, codes))
}

type saverFunc func() error

func (f saverFunc) Save() error { return f() }

func TestGuardRefusesAppendsAfterShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faune_info.xml")
	store, err := xmlstorage.New(xmlstorage.WithPath(path))
	require.NoError(t, err)
	exit, codes := exitRecorder()
	c := New(store, WithExit(exit))
	guarded := c.Guard(store)

	require.NoError(t, guarded.Append(&spider.Record{Slug: "a", Fields: spider.NewFields()}))
	c.Interrupt()
	assert.Equal(t, 0, waitCode(t, codes))

	err = guarded.Append(&spider.Record{Slug: "b", Fields: spider.NewFields()})
	assert.ErrorIs(t, err, ErrShuttingDown)
	assert.Equal(t, 1, store.Len())

	recs, err := xmlstorage.Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Slug)
}
