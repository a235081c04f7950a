package store

import (
	"context"
	"errors"
	"strings"

	"github.com/loykin/folderedit/internal/folder"
)

// User-facing rejection messages returned inside folder.Result.
const (
	MsgNotFound = "Folder not found."
	MsgInUse    = "This folder still contains items and cannot be deleted."
)

// Store persists folders and the items filed under them.
type Store interface {
	folder.Store
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, encodedName string) (folder.Folder, error)
	List(ctx context.Context) ([]folder.Folder, error)
	// AddItem files itemID under folderID. folder.ErrNotFound when the folder is missing.
	AddItem(ctx context.Context, itemID, folderID string) error
	Close() error
}

// Open selects a store implementation based on DSN.
// Supported:
//   - memory:   "memory://"
//   - postgres: DSN starting with "postgres://" or "postgresql://"
//   - sqlite:   "sqlite://<path>", ":memory:" or a bare filepath
//
// The schema is created before Open returns.
func Open(ctx context.Context, dsn string) (Store, error) {
	d := strings.TrimSpace(dsn)
	ld := strings.ToLower(d)
	if ld == "" {
		return nil, errors.New("empty DSN")
	}
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(ld, "memory://"):
		s = NewMemory()
	case strings.HasPrefix(ld, "postgres://") || strings.HasPrefix(ld, "postgresql://"):
		s, err = OpenSQL(DialectPostgres, d)
	case strings.HasPrefix(ld, "sqlite://"):
		s, err = OpenSQL(DialectSQLite, d[len("sqlite://"):])
	case strings.Contains(ld, "://"):
		return nil, errors.New("unsupported DSN format: " + dsn)
	default:
		s, err = OpenSQL(DialectSQLite, d)
	}
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
