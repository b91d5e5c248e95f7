// Package history persists a ledger of completed runs: a content
// fingerprint of the program that ran, the input it consumed, its
// captured stdout, exit code, duration, and which engine produced it.
// Storage is backend-agnostic over database/sql, dialing whichever of
// four drivers the store's DSN scheme names — the same selection idiom
// the reference toolchain's connection manager uses, generalized from an
// explicit type parameter to a DSN prefix since a run-history store only
// ever has one backend open at a time.
package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"golang.org/x/crypto/blake2b"

	"aheui/internal/diag"
)

const stdoutCap = 64 * 1024

// Run is one row of the ledger.
type Run struct {
	ID          int64
	Fingerprint string
	Input       string
	Stdout      string
	Truncated   bool
	ExitCode    int32
	Duration    time.Duration
	Engine      string // "interpreter" or "precompiler"
	CreatedAt   time.Time
}

// Store is a run-history ledger backed by one database/sql connection.
type Store struct {
	db     *sql.DB
	driver string
}

// Open dials the database named by dsn, selecting a driver from its
// scheme prefix (postgres://, mysql://, sqlserver://; anything else is
// treated as a sqlite file path, the default with no cgo dependency), and
// ensures the run-history table exists.
func Open(dsn string) (*Store, error) {
	driver, dataSource := driverFor(dsn)

	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, diag.Wrap(err, diag.Config, "failed to open run-history database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, diag.Wrap(err, diag.Config, "failed to reach run-history database")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func driverFor(dsn string) (driver, dataSource string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn
	default:
		return "sqlite", dsn
	}
}

// rebind rewrites the store's driver-agnostic "?" placeholders into
// whatever positional syntax the selected driver actually accepts —
// lib/pq and go-mssqldb both reject bare "?" outright.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" && s.driver != "sqlserver" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		if s.driver == "postgres" {
			fmt.Fprintf(&b, "$%d", n)
		} else {
			fmt.Fprintf(&b, "@p%d", n)
		}
	}
	return b.String()
}

// createTableDDL holds one CREATE TABLE statement per driver: the four
// backends agree on nothing around auto-incrementing primary keys
// (AUTOINCREMENT, AUTO_INCREMENT, SERIAL, IDENTITY are all different
// keywords), and SQL Server has no "CREATE TABLE IF NOT EXISTS" at all.
var createTableDDL = map[string]string{
	"sqlite": `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL,
		input TEXT NOT NULL,
		stdout TEXT NOT NULL,
		truncated INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		engine TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	"mysql": `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTO_INCREMENT,
		fingerprint TEXT NOT NULL,
		input TEXT NOT NULL,
		stdout TEXT NOT NULL,
		truncated INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		engine VARCHAR(32) NOT NULL,
		created_at VARCHAR(32) NOT NULL
	)`,
	"postgres": `CREATE TABLE IF NOT EXISTS runs (
		id SERIAL PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		input TEXT NOT NULL,
		stdout TEXT NOT NULL,
		truncated INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		engine TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	"sqlserver": `IF NOT EXISTS (SELECT 1 FROM sysobjects WHERE name = 'runs' AND xtype = 'U')
	CREATE TABLE runs (
		id INT IDENTITY(1,1) PRIMARY KEY,
		fingerprint NVARCHAR(MAX) NOT NULL,
		input NVARCHAR(MAX) NOT NULL,
		stdout NVARCHAR(MAX) NOT NULL,
		truncated INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		engine NVARCHAR(64) NOT NULL,
		created_at NVARCHAR(64) NOT NULL
	)`,
}

func (s *Store) migrate() error {
	ddl, ok := createTableDDL[s.driver]
	if !ok {
		return diag.Wrap(fmt.Errorf("no run-history schema for driver %q", s.driver), diag.Config, "failed to create run-history table")
	}
	if _, err := s.db.Exec(ddl); err != nil {
		return diag.Wrap(err, diag.Config, "failed to create run-history table")
	}
	return nil
}

// Fingerprint returns the BLAKE2b-256 content key of a program's source
// text, used to group runs of the same program across many invocations.
func Fingerprint(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Record inserts one completed run. stdout is truncated to stdoutCap
// bytes; Record reports whether truncation happened via the returned Run.
func (s *Store) Record(ctx context.Context, source, input, stdout string, exitCode int32, d time.Duration, engine string) (Run, error) {
	run := Run{
		Fingerprint: Fingerprint(source),
		Input:       input,
		ExitCode:    exitCode,
		Duration:    d,
		Engine:      engine,
		CreatedAt:   time.Now().UTC(),
	}
	if len(stdout) > stdoutCap {
		run.Stdout = stdout[:stdoutCap]
		run.Truncated = true
	} else {
		run.Stdout = stdout
	}

	result, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (fingerprint, input, stdout, truncated, exit_code, duration_ms, engine, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		run.Fingerprint, run.Input, run.Stdout, boolToInt(run.Truncated), run.ExitCode,
		run.Duration.Milliseconds(), run.Engine, run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Run{}, diag.Wrap(err, diag.Runtime, "failed to record run history")
	}
	if id, err := result.LastInsertId(); err == nil {
		run.ID = id
	}
	return run, nil
}

// Filter narrows List's results; a zero-value field means "don't filter
// on this column".
type Filter struct {
	Fingerprint string
	Since       time.Time
	Until       time.Time
	ExitCode    *int32
}

// List returns runs matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	query := `SELECT id, fingerprint, input, stdout, truncated, exit_code, duration_ms, engine, created_at FROM runs WHERE 1=1`
	var args []interface{}

	if filter.Fingerprint != "" {
		query += " AND fingerprint = ?"
		args = append(args, filter.Fingerprint)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if !filter.Until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}
	if filter.ExitCode != nil {
		query += " AND exit_code = ?"
		args = append(args, *filter.ExitCode)
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, diag.Wrap(err, diag.Runtime, "failed to query run history")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var truncated int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Fingerprint, &r.Input, &r.Stdout, &truncated,
			&r.ExitCode, (*durationMillis)(&r.Duration), &r.Engine, &createdAt); err != nil {
			return nil, diag.Wrap(err, diag.Runtime, "failed to scan run-history row")
		}
		r.Truncated = truncated != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// durationMillis adapts a time.Duration field to sql.Scanner so List can
// scan the stored millisecond integer straight into it.
type durationMillis time.Duration

func (d *durationMillis) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*d = durationMillis(time.Duration(v) * time.Millisecond)
	case float64:
		*d = durationMillis(time.Duration(v) * time.Millisecond)
	default:
		return fmt.Errorf("history: cannot scan %T into duration", src)
	}
	return nil
}
