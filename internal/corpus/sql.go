package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/resilience"
	_ "github.com/mattn/go-sqlite3"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource loads papers from a table whose columns are named after the
// Paper JSON keys. Unknown columns are ignored and missing ones default.
type SQLSource struct {
	db      *sql.DB
	table   string
	orderBy string
	label   string
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// OpenSQLite opens the SQLite database at path. The file must exist.
func OpenSQLite(path, table string) (*SQLSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, unavailable("sqlite database %s: %v", path, err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, unavailable("opening sqlite %s: %v", path, err)
	}
	src, err := newSQLSource(db, table, "rowid", "sqlite:"+path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

// NewPostgresSource reads table through an existing client. Postgres has no
// implicit row order, so records come back in heap order.
func NewPostgresSource(client *postgres.Client, table string) (*SQLSource, error) {
	return newSQLSource(client.DB, table, "", "postgres:"+table)
}

func newSQLSource(db *sql.DB, table, orderBy, label string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLSource{
		db:      db,
		table:   table,
		orderBy: orderBy,
		label:   label,
		retry:   resilience.DefaultRetryConfig(),
		logger:  slog.Default().With("component", "corpus-loader", "source", label),
	}, nil
}

func (s *SQLSource) Describe() string { return s.label }

// Close closes the underlying database.
func (s *SQLSource) Close() error { return s.db.Close() }

func (s *SQLSource) Load(ctx context.Context) (Batch, error) {
	var batch Batch
	err := resilience.Retry(ctx, "load "+s.label, s.retry, func(ctx context.Context) error {
		var err error
		batch, err = s.query(ctx)
		return err
	})
	if err != nil {
		return Batch{}, unavailable("loading %s: %v", s.label, err)
	}
	return batch, nil
}

// ErrNoSuchTable is returned when the configured table does not exist.
var ErrNoSuchTable = errors.New("no such table")

func (s *SQLSource) query(ctx context.Context) (Batch, error) {
	q := "SELECT * FROM " + s.table
	if s.orderBy != "" {
		q += " ORDER BY " + s.orderBy
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist") {
			return Batch{}, resilience.Permanent(fmt.Errorf("%w: %s", ErrNoSuchTable, s.table))
		}
		return Batch{}, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Batch{}, fmt.Errorf("reading columns: %w", err)
	}
	present := make(map[string]bool, len(cols))
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
		present[cols[i]] = true
	}
	for _, f := range fieldNames {
		if !present[f] {
			s.logger.Warn("column missing, defaulting to empty", "column", f)
		}
	}

	var batch Batch
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return Batch{}, fmt.Errorf("scanning row %d: %w", len(batch.Papers), err)
		}
		fields := make(map[string]any, len(fieldNames))
		for _, f := range fieldNames {
			fields[f] = nil
		}
		for i, c := range cols {
			fields[c] = values[i]
		}
		p, malformed := decodeRecord(s.logger, len(batch.Papers), fields)
		if malformed {
			batch.Malformed++
		}
		batch.Papers = append(batch.Papers, p)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, fmt.Errorf("iterating rows: %w", err)
	}
	s.logger.Info("loaded corpus", "records", len(batch.Papers), "malformed", batch.Malformed)
	return batch, nil
}

// WriteSQLite replaces table in the SQLite database at path with papers.
// Keywords are stored comma-separated.
func WriteSQLite(ctx context.Context, path, table string, papers []Paper) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		"CREATE TABLE " + table + ` (
			first_author TEXT, co_authors TEXT, title TEXT, journal TEXT,
			year TEXT, keywords TEXT, doi TEXT, alt_link TEXT, teacher_id TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("preparing table %s: %w", table, err)
		}
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO "+table+
		" (first_author, co_authors, title, journal, year, keywords, doi, alt_link, teacher_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer ins.Close()
	for i, p := range papers {
		if _, err := ins.ExecContext(ctx, p.FirstAuthor, p.CoAuthors, p.Title, p.Journal, p.Year,
			strings.Join(p.Keywords, ", "), p.DOI, p.AltLink, p.TeacherID); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	return tx.Commit()
}
