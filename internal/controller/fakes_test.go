package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/loykin/folderedit/internal/folder"
)

// prefixCipher is a reversible transform good enough for workflow tests.
type prefixCipher struct{ failEncode bool }

func enc(s string) string { return "enc:" + s }

func (p prefixCipher) Encode(plain string) (string, error) {
	if p.failEncode {
		return "", errors.New("encode failed")
	}
	return "enc:" + plain, nil
}

func (prefixCipher) Decode(s string) (string, error) {
	if !strings.HasPrefix(s, "enc:") {
		return "", errors.New("not encoded")
	}
	return strings.TrimPrefix(s, "enc:"), nil
}

type fakeStore struct {
	mu        sync.Mutex
	folders   map[string]folder.Folder
	getErr    error
	saveRes   folder.Result
	deleteRes folder.Result
	saved     []folder.Folder
	deleted   []string
	onSave    func()
	panicSave bool
}

func newFakeStore(fs ...folder.Folder) *fakeStore {
	s := &fakeStore{folders: map[string]folder.Folder{}, saveRes: folder.Success(), deleteRes: folder.Success()}
	for _, f := range fs {
		s.folders[f.ID] = f
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id string) (folder.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return folder.Folder{}, s.getErr
	}
	f, ok := s.folders[id]
	if !ok {
		return folder.Folder{}, folder.ErrNotFound
	}
	return f, nil
}

func (s *fakeStore) Save(_ context.Context, f folder.Folder) folder.Result {
	if s.onSave != nil {
		s.onSave()
	}
	if s.panicSave {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, f)
	return s.saveRes
}

func (s *fakeStore) Delete(_ context.Context, id string) folder.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return s.deleteRes
}

func (s *fakeStore) saveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *fakeStore) deleteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deleted)
}

// alert is one modal shown to the user.
type alert struct {
	Title   string
	Message string
}

// fakeFeedback records everything shown, in order, and flags overlap between the
// progress indicator and any dialog or toast.
type fakeFeedback struct {
	mu       sync.Mutex
	events   []string
	alerts   []alert
	toasts   []string
	prompts  int
	answer   bool
	busy     bool
	overlaps int
}

func (f *fakeFeedback) ShowProgress(_ context.Context, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = true
	f.events = append(f.events, "progress:"+label)
}

func (f *fakeFeedback) HideProgress(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.events = append(f.events, "hide")
}

func (f *fakeFeedback) Toast(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		f.overlaps++
	}
	f.toasts = append(f.toasts, message)
	f.events = append(f.events, "toast:"+message)
}

func (f *fakeFeedback) Alert(_ context.Context, title, message, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		f.overlaps++
	}
	f.alerts = append(f.alerts, alert{Title: title, Message: message})
	f.events = append(f.events, "alert:"+title+"|"+message)
}

func (f *fakeFeedback) Confirm(context.Context, string, string, string, string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		f.overlaps++
	}
	f.prompts++
	f.events = append(f.events, "confirm")
	return f.answer
}

type fakeAnalytics struct {
	mu     sync.Mutex
	events []string
}

func (a *fakeAnalytics) Track(_ context.Context, event string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

type fakeNavigator struct {
	mu    sync.Mutex
	backs int
}

func (n *fakeNavigator) GoBack(context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.backs++
}

func (n *fakeNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.backs
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type connFlag struct {
	mu sync.Mutex
	on bool
}

func (c *connFlag) IsConnected(context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

func (c *connFlag) set(v bool) {
	c.mu.Lock()
	c.on = v
	c.mu.Unlock()
}
