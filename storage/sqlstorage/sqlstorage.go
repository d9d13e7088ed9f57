// Package sqlstorage mirrors crawled records into a SQL table, one row per
// record, buffered and written in batches.
package sqlstorage

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/sqldb"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultTable = "fauna_records"

type row struct {
	rec *spider.Record
	at  time.Time
}

type SqlStore struct {
	mu         sync.Mutex
	dataDocker []row
	db         sqldb.DBer
	tableReady bool
	options
}

func New(opts ...Option) (*SqlStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	db, err := sqldb.New(
		sqldb.WithDriver(options.driver),
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", options.driver, err)
	}
	return NewWithDB(db, opts...), nil
}

// NewWithDB builds a store over an already opened database.
func NewWithDB(db sqldb.DBer, opts ...Option) *SqlStore {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &SqlStore{db: db, options: options}
}

/*
Append buffers rec. When the buffer already holds BatchCount rows they are
inserted first; an insert failure is logged and the crawl goes on, since the
XML document stays the reference copy.
*/
func (s *SqlStore) Append(rec *spider.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTable(); err != nil {
		return err
	}
	if len(s.dataDocker) >= s.BatchCount {
		if err := s.flush(); err != nil {
			s.logger.Error("insert records failed", zap.Error(err))
		}
	}
	s.dataDocker = append(s.dataDocker, row{rec: rec, at: time.Now()})
	return nil
}

// Save inserts whatever is buffered.
func (s *SqlStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureTable(); err != nil {
		return err
	}
	return s.flush()
}

// Close flushes the buffer and releases the database when the store owns it.
func (s *SqlStore) Close() error {
	err := s.Save()
	if c, ok := s.db.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (s *SqlStore) ensureTable() error {
	if s.tableReady {
		return nil
	}
	err := s.db.CreateTable(sqldb.TableData{
		TableName:   s.table,
		ColumnNames: columns,
		AutoKey:     true,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	s.tableReady = true
	return nil
}

// flush empties the buffer whatever the outcome of the insert.
func (s *SqlStore) flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	args := make([]interface{}, 0, len(s.dataDocker)*len(columns))
	for _, r := range s.dataDocker {
		fields, err := json.Marshal(r.rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields of %s: %w", r.rec.SourceURL, err)
		}
		args = append(args,
			s.runID,
			r.rec.Slug,
			r.rec.Title,
			r.rec.Description,
			string(fields),
			r.rec.ImageURL,
			r.rec.References,
			r.rec.SourceURL,
			r.at.UTC().Format(time.RFC3339),
		)
	}

	err := s.db.Insert(sqldb.TableData{
		TableName:   s.table,
		ColumnNames: columns,
		Args:        args,
		DataCount:   len(s.dataDocker),
	})
	if err == nil {
		s.logger.Debug("records inserted", zap.String("table", s.table), zap.Int("count", len(s.dataDocker)))
	}
	return err
}

var columns = []sqldb.Field{
	{Title: "run_id", Type: "VARCHAR(36)"},
	{Title: "slug", Type: "VARCHAR(255)"},
	{Title: "title", Type: "TEXT"},
	{Title: "description", Type: "MEDIUMTEXT"},
	{Title: "fields", Type: "MEDIUMTEXT"},
	{Title: "image_url", Type: "VARCHAR(1024)"},
	{Title: "reference_text", Type: "MEDIUMTEXT"},
	{Title: "source_url", Type: "VARCHAR(1024)"},
	{Title: "time", Type: "VARCHAR(64)"},
}
