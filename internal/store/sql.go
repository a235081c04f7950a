package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/loykin/folderedit/internal/folder"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQL implements Store on SQLite (modernc.org/sqlite, CGO-free) or PostgreSQL
// (pgx stdlib). Queries are written with '?' placeholders and rebound per dialect.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	Logger  *slog.Logger
}

// OpenSQL opens a database. For SQLite dsn is a filesystem path or ":memory:".
func OpenSQL(dialect Dialect, dsn string) (*SQL, error) {
	d := strings.TrimSpace(dsn)
	if d == "" {
		return nil, fmt.Errorf("empty %s DSN", dialect)
	}
	var drv string
	switch dialect {
	case DialectSQLite:
		drv = "sqlite"
	case DialectPostgres:
		drv = "pgx"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	db, err := sql.Open(drv, d)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// a single connection keeps ":memory:" databases coherent and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		_, _ = db.Exec("PRAGMA busy_timeout=3000;")
		_, _ = db.Exec("PRAGMA foreign_keys=ON;")
	}
	return &SQL{db: db, dialect: dialect}, nil
}

func (s *SQL) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// rebind turns '?' placeholders into $n for PostgreSQL.
func (s *SQL) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) EnsureSchema(ctx context.Context) error {
	ts := "TIMESTAMP"
	if s.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS folders(
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			revision_date ` + ts + ` NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS folder_items(
			id TEXT PRIMARY KEY,
			folder_id TEXT NOT NULL REFERENCES folders(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_folder_items_folder ON folder_items(folder_id);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) Get(ctx context.Context, id string) (folder.Folder, error) {
	var f folder.Folder
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, name, revision_date FROM folders WHERE id=?;`), id).
		Scan(&f.ID, &f.Name, &f.RevisionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return folder.Folder{}, folder.ErrNotFound
	}
	if err != nil {
		return folder.Folder{}, err
	}
	f.RevisionDate = f.RevisionDate.UTC()
	return f, nil
}

func (s *SQL) Save(ctx context.Context, f folder.Folder) folder.Result {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE folders SET name=?, revision_date=? WHERE id=?;`),
		f.Name, time.Now().UTC(), f.ID)
	if err != nil {
		s.log().Error("save folder", "id", f.ID, "error", err)
		return folder.Unknown()
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log().Error("save folder rows affected", "id", f.ID, "error", err)
		return folder.Unknown()
	}
	if n == 0 {
		return folder.FailureMessage(MsgNotFound)
	}
	return folder.Success()
}

func (s *SQL) Delete(ctx context.Context, id string) folder.Result {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log().Error("delete folder begin", "id", id, "error", err)
		return folder.Unknown()
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM folders WHERE id=?;`), id).Scan(&exists)
	if err != nil {
		s.log().Error("delete folder lookup", "id", id, "error", err)
		return folder.Unknown()
	}
	if exists == 0 {
		return folder.FailureMessage(MsgNotFound)
	}
	var items int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM folder_items WHERE folder_id=?;`), id).Scan(&items)
	if err != nil {
		s.log().Error("delete folder items", "id", id, "error", err)
		return folder.Unknown()
	}
	if items > 0 {
		return folder.FailureMessage(MsgInUse)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM folders WHERE id=?;`), id); err != nil {
		s.log().Error("delete folder", "id", id, "error", err)
		return folder.Unknown()
	}
	if err := tx.Commit(); err != nil {
		s.log().Error("delete folder commit", "id", id, "error", err)
		return folder.Unknown()
	}
	return folder.Success()
}

func (s *SQL) Create(ctx context.Context, encodedName string) (folder.Folder, error) {
	f := folder.Folder{ID: uuid.NewString(), Name: encodedName, RevisionDate: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO folders(id, name, revision_date) VALUES(?, ?, ?);`),
		f.ID, f.Name, f.RevisionDate)
	if err != nil {
		return folder.Folder{}, err
	}
	return f, nil
}

func (s *SQL) List(ctx context.Context) ([]folder.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, revision_date FROM folders ORDER BY revision_date, id;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make([]folder.Folder, 0)
	for rows.Next() {
		var f folder.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.RevisionDate); err != nil {
			return nil, err
		}
		f.RevisionDate = f.RevisionDate.UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQL) AddItem(ctx context.Context, itemID, folderID string) error {
	if _, err := s.Get(ctx, folderID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO folder_items(id, folder_id) VALUES(?, ?);`), itemID, folderID)
	return err
}
