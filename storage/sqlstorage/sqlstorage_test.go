package sqlstorage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mysqldb struct {
	created  int
	inserted []sqldb.TableData
	err      error
}

func (m *mysqldb) CreateTable(t sqldb.TableData) error {
	m.created++
	return nil
}

func (m *mysqldb) Insert(t sqldb.TableData) error {
	m.inserted = append(m.inserted, t)
	return m.err
}

func record(slug string) *spider.Record {
	f := spider.NewFields()
	f.Set("Habitat", "Forêt")
	return &spider.Record{Slug: slug, Title: slug, Description: spider.NA, Fields: f, SourceURL: "https://x/" + slug}
}

func TestSQLStorage_Flush(t *testing.T) {
	tests := []struct {
		name      string
		records   int
		dbErr     error
		wantErr   bool
		wantCalls int
	}{
		{name: "empty", records: 0, wantCalls: 0},
		{name: "one record", records: 1, wantCalls: 1},
		{name: "insert failure", records: 2, dbErr: errors.New("gone away"), wantErr: true, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mysqldb{err: tt.dbErr}
			s := NewWithDB(db, WithRunID("run-1"), WithBatchCount(10))
			for i := 0; i < tt.records; i++ {
				require.NoError(t, s.Append(record("r")))
			}
			if err := s.Save(); (err != nil) != tt.wantErr {
				t.Errorf("Save() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Nil(t, s.dataDocker)
			assert.Len(t, db.inserted, tt.wantCalls)
			assert.Equal(t, 1, db.created)
		})
	}
}

func TestAppendFlushesByBatch(t *testing.T) {
	db := &mysqldb{}
	s := NewWithDB(db, WithRunID("run-1"), WithBatchCount(2))
	for _, slug := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(record(slug)))
	}
	require.Len(t, db.inserted, 1)
	first := db.inserted[0]
	assert.Equal(t, DefaultTable, first.TableName)
	assert.Equal(t, 2, first.DataCount)
	assert.Len(t, first.Args, 2*len(columns))
	assert.Equal(t, "run-1", first.Args[0])
	assert.Equal(t, "a", first.Args[1])

	require.NoError(t, s.Save())
	require.Len(t, db.inserted, 2)
	assert.Equal(t, 1, db.inserted[1].DataCount)
}

func TestSqliteMirror(t *testing.T) {
	s, err := New(
		WithDriver(sqldb.SQLite),
		WithSqlURL(filepath.Join(t.TempDir(), "faune.db")),
		WithRunID("run-42"),
	)
	require.NoError(t, err)

	require.NoError(t, s.Append(record("Caribou")))
	require.NoError(t, s.Append(record("Tortue")))
	require.NoError(t, s.Save())

	db := s.db.(*sqldb.Sqldb).DB()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fauna_records WHERE run_id = ?`, "run-42").Scan(&n))
	assert.Equal(t, 2, n)

	var raw string
	require.NoError(t, db.QueryRow(`SELECT fields FROM fauna_records WHERE slug = ?`, "Tortue").Scan(&raw))
	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	assert.Equal(t, "Forêt", fields["Habitat"])

	require.NoError(t, s.Close())
}
