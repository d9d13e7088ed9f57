package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenDB opens the connection pool and pings it.
func (d *Sqldb) OpenDB() error {
	switch d.driver {
	case MySQL, SQLite:
	default:
		return fmt.Errorf("unsupported sql driver %q", d.driver)
	}
	db, err := sql.Open(d.driver, d.sqlURL)
	if err != nil {
		return err
	}
	if d.driver == SQLite {
		// one writer at a time, and ":memory:" stays one database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(64)
		db.SetMaxIdleConns(64)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// DB exposes the pool for reads.
func (d *Sqldb) DB() *sql.DB {
	return d.db
}

func (d *Sqldb) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("column can not be empty")
	}
	sql := `CREATE TABLE IF NOT EXISTS ` + t.TableName + " ("
	if t.AutoKey {
		if d.driver == SQLite {
			sql += `id INTEGER PRIMARY KEY AUTOINCREMENT,`
		} else {
			sql += `id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,`
		}
	}
	for _, t := range t.ColumnNames {
		sql += t.Title + ` ` + t.Type + `,`
	}
	sql = sql[:len(sql)-1] + `)`
	if d.driver == MySQL {
		sql += ` ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	}
	sql += `;`

	d.logger.Debug("create table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)
	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	sql := `DROP TABLE IF EXISTS ` + t.TableName

	d.logger.Debug("drop table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)
	return err
}

// Insert writes t.DataCount rows in one statement,
// INSERT INTO t(a,b) VALUES (?,?),(?,?);
func (d *Sqldb) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("empty column")
	}
	if t.DataCount == 0 {
		return nil
	}
	if len(t.Args) != t.DataCount*len(t.ColumnNames) {
		return fmt.Errorf("insert %s: %d args for %d rows of %d columns",
			t.TableName, len(t.Args), t.DataCount, len(t.ColumnNames))
	}

	cols := make([]string, 0, len(t.ColumnNames))
	for _, v := range t.ColumnNames {
		cols = append(cols, v.Title)
	}
	sql := `INSERT INTO ` + t.TableName + `(` + strings.Join(cols, ",") + `) VALUES `

	blank := ",(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	sql += strings.Repeat(blank, t.DataCount)[1:] + `;`
	d.logger.Debug("insert table", zap.String("sql", sql))
	_, err := d.db.Exec(sql, t.Args...)
	return err
}

// Field is one column of a table.
type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []interface{}
	DataCount   int // rows in Args
	AutoKey     bool
}
