package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faune_info.xml")

	require.NoError(t, WriteFile(path, []byte("first"), 0o644))
	require.NoError(t, WriteFile(path, []byte("second"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "out.xml"), []byte("x"), 0o644)
	assert.Error(t, err)
}

type recorder struct {
	appended []*spider.Record
	saves    int
	err      error
}

func (r *recorder) Append(rec *spider.Record) error {
	r.appended = append(r.appended, rec)
	return r.err
}

func (r *recorder) Save() error {
	r.saves++
	return r.err
}

func TestMulti(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("db down")}
	s := Multi(bad, nil, ok)

	rec := &spider.Record{Slug: "Caribou"}
	err := s.Append(rec)
	assert.EqualError(t, err, "db down")
	assert.Equal(t, []*spider.Record{rec}, ok.appended)

	err = s.Save()
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, 1, ok.saves)
	assert.Equal(t, 1, bad.saves)
}

func TestMultiSingle(t *testing.T) {
	only := &recorder{}
	assert.Same(t, only, Multi(only))
}
