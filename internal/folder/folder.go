package folder

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when no folder exists for the id.
var ErrNotFound = errors.New("folder not found")

// Folder is a single vault folder.
// Name holds the encoded (at rest) form; callers decode it through a cipher.Transform
// before showing it to a user. ID never changes once a folder has been created.
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RevisionDate time.Time `json:"revision_date"`
}

// WithName returns a copy of f carrying the given encoded name.
func (f Folder) WithName(encoded string) Folder {
	f.Name = encoded
	return f
}

// Store is the remote or local service holding folders.
// Save and Delete never return Go errors: every failure is reported through the Result.
type Store interface {
	Get(ctx context.Context, id string) (Folder, error)
	Save(ctx context.Context, f Folder) Result
	Delete(ctx context.Context, id string) Result
}
