package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loykin/folderedit/internal/folder"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	folders map[string]folder.Folder
	items   map[string]string // item id -> folder id
}

func NewMemory() *Memory {
	return &Memory{folders: make(map[string]folder.Folder), items: make(map[string]string)}
}

func (m *Memory) EnsureSchema(context.Context) error { return nil }
func (m *Memory) Close() error                       { return nil }

func (m *Memory) Get(_ context.Context, id string) (folder.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.folders[id]
	if !ok {
		return folder.Folder{}, folder.ErrNotFound
	}
	return f, nil
}

func (m *Memory) Save(_ context.Context, f folder.Folder) folder.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[f.ID]; !ok {
		return folder.FailureMessage(MsgNotFound)
	}
	f.RevisionDate = time.Now().UTC()
	m.folders[f.ID] = f
	return folder.Success()
}

func (m *Memory) Delete(_ context.Context, id string) folder.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[id]; !ok {
		return folder.FailureMessage(MsgNotFound)
	}
	for _, fid := range m.items {
		if fid == id {
			return folder.FailureMessage(MsgInUse)
		}
	}
	delete(m.folders, id)
	return folder.Success()
}

func (m *Memory) Create(_ context.Context, encodedName string) (folder.Folder, error) {
	f := folder.Folder{ID: uuid.NewString(), Name: encodedName, RevisionDate: time.Now().UTC()}
	m.mu.Lock()
	m.folders[f.ID] = f
	m.mu.Unlock()
	return f, nil
}

func (m *Memory) List(context.Context) ([]folder.Folder, error) {
	m.mu.RLock()
	out := make([]folder.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, f)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].RevisionDate.Equal(out[j].RevisionDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].RevisionDate.Before(out[j].RevisionDate)
	})
	return out, nil
}

func (m *Memory) AddItem(_ context.Context, itemID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[folderID]; !ok {
		return folder.ErrNotFound
	}
	m.items[itemID] = folderID
	return nil
}
