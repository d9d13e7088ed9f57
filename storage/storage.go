// Package storage holds what every record sink shares: the write-replace file
// helper and the fan-out over several sinks.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"go.uber.org/multierr"
)

/*
WriteFile replaces path with data.

The bytes go to a temporary file in the same directory, which is synced and
then renamed over path. A reader of path sees either the previous content or
the new one, never a prefix.
*/
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

type multi []spider.Storage

// Multi sends every record to each of stores in turn. A failing store does not
// stop the others; their errors are combined.
func Multi(stores ...spider.Storage) spider.Storage {
	var m multi
	for _, s := range stores {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) Append(rec *spider.Record) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Append(rec))
	}
	return err
}

func (m multi) Save() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Save())
	}
	return err
}
