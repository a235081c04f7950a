package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/folderedit/internal/folder"
)

type harness struct {
	store *fakeStore
	fb    *fakeFeedback
	an    *fakeAnalytics
	nav   *fakeNavigator
	clock *manualClock
	conn  *connFlag
	ctl   *Controller
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		store: newFakeStore(folder.Folder{ID: "f1", Name: enc("Work")}),
		fb:    &fakeFeedback{},
		an:    &fakeAnalytics{},
		nav:   &fakeNavigator{},
		clock: &manualClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		conn:  &connFlag{on: true},
	}
	ctl, err := New(context.Background(), "f1", h.deps(), opts)
	require.NoError(t, err)
	h.ctl = ctl
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Store:     h.store,
		Probe:     h.conn,
		Feedback:  h.fb,
		Analytics: h.an,
		Navigator: h.nav,
		Cipher:    prefixCipher{},
		Clock:     h.clock.Now,
	}
}

func TestLoadDecodesName(t *testing.T) {
	h := newHarness(t, Options{})
	assert.Equal(t, "Work", h.ctl.Name())
	assert.Equal(t, StateIdle, h.ctl.State())
	assert.Equal(t, "f1", h.ctl.Record().ID)
}

func TestSaveSucceeds(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	out := h.ctl.Save(ctx, "Personal")

	require.Equal(t, OutcomeSucceeded, out)
	require.Equal(t, 1, h.store.saveCalls())
	assert.Equal(t, folder.Folder{ID: "f1", Name: enc("Personal")}, h.store.saved[0])
	assert.Equal(t, []string{"Folder updated"}, h.fb.toasts)
	assert.Equal(t, []string{EventEditedFolder}, h.an.events)
	assert.Equal(t, 1, h.nav.count())
	assert.Empty(t, h.fb.alerts)
	assert.Equal(t, []string{"progress:Saving...", "hide", "toast:Folder updated"}, h.fb.events)
	assert.Zero(t, h.fb.overlaps)
	assert.Equal(t, "Personal", h.ctl.Name())
	assert.Equal(t, enc("Personal"), h.ctl.Record().Name)
	assert.Equal(t, StateIdle, h.ctl.State())
}

func TestSaveOfflineNeverCallsStore(t *testing.T) {
	h := newHarness(t, Options{})
	h.conn.set(false)

	out := h.ctl.Save(context.Background(), "Personal")

	assert.Equal(t, OutcomeOffline, out)
	assert.Zero(t, h.store.saveCalls())
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, DefaultMessages.ConnectionTitle, h.fb.alerts[0].Title)
	assert.Equal(t, DefaultMessages.ConnectionMessage, h.fb.alerts[0].Message)
	assert.Zero(t, h.nav.count())
	assert.Empty(t, h.an.events)
}

func TestSaveBlankNameNeverCallsStore(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n  "} {
		h := newHarness(t, Options{})
		out := h.ctl.Save(context.Background(), name)

		assert.Equal(t, OutcomeInvalid, out, "name %q", name)
		assert.Zero(t, h.store.saveCalls())
		require.Len(t, h.fb.alerts, 1)
		assert.Equal(t, "An error has occurred.", h.fb.alerts[0].Title)
		assert.Equal(t, "The Name field is required.", h.fb.alerts[0].Message)
		assert.Equal(t, "Work", h.ctl.Name())
	}
}

func TestSaveFailedShowsFirstErrorOnly(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.saveRes = folder.Failure(folder.Error{Message: "E1"}, folder.Error{Message: "E2"})

	out := h.ctl.Save(context.Background(), "Personal")

	assert.Equal(t, OutcomeFailed, out)
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, "E1", h.fb.alerts[0].Message)
	assert.Equal(t, []string{"progress:Saving...", "hide", "alert:An error has occurred.|E1"}, h.fb.events)
	assert.Zero(t, h.nav.count())
	assert.Empty(t, h.an.events)
	assert.Empty(t, h.fb.toasts)
	// the in-memory record keeps the last persisted name
	assert.Equal(t, enc("Work"), h.ctl.Record().Name)
	assert.Equal(t, "Work", h.ctl.Name())
}

func TestSaveUnknownFailureShowsGenericAlert(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.saveRes = folder.Unknown()

	out := h.ctl.Save(context.Background(), "Personal")

	assert.Equal(t, OutcomeFailedUnknown, out)
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, alert{Title: "", Message: "An error has occurred."}, h.fb.alerts[0])
	assert.Zero(t, h.fb.overlaps)
	assert.Zero(t, h.nav.count())
}

func TestSaveStorePanicReleasesProgress(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.panicSave = true

	out := h.ctl.Save(context.Background(), "Personal")

	assert.Equal(t, OutcomeFailedUnknown, out)
	assert.Equal(t, []string{"progress:Saving...", "hide", "alert:|An error has occurred."}, h.fb.events)
	assert.Zero(t, h.fb.overlaps)
	assert.Equal(t, StateIdle, h.ctl.State())
}

func TestSaveEncodeFailure(t *testing.T) {
	h := newHarness(t, Options{})
	d := h.deps()
	d.Cipher = prefixCipher{failEncode: true}
	ctl, err := New(context.Background(), "f1", d, Options{})
	require.NoError(t, err)

	out := ctl.Save(context.Background(), "Personal")

	assert.Equal(t, OutcomeFailedUnknown, out)
	assert.Zero(t, h.store.saveCalls())
}

func TestRepeatedSavesWithinWindowCallStoreOnce(t *testing.T) {
	h := newHarness(t, Options{GuardWindow: time.Second})
	h.store.saveRes = folder.FailureMessage("busy")
	ctx := context.Background()

	outs := make([]Outcome, 0, 5)
	for i := 0; i < 5; i++ {
		outs = append(outs, h.ctl.Save(ctx, "Personal"))
		h.clock.Advance(100 * time.Millisecond)
	}

	assert.Equal(t, 1, h.store.saveCalls())
	assert.Equal(t, OutcomeFailed, outs[0])
	for _, o := range outs[1:] {
		assert.Equal(t, OutcomeSkipped, o)
	}
	// skipped taps show nothing
	assert.Len(t, h.fb.alerts, 1)

	h.clock.Advance(time.Second)
	assert.Equal(t, OutcomeFailed, h.ctl.Save(ctx, "Personal"))
	assert.Equal(t, 2, h.store.saveCalls())
}

func TestGuardStampedOnRejectedAttempts(t *testing.T) {
	h := newHarness(t, Options{GuardWindow: time.Second})
	ctx := context.Background()
	h.conn.set(false)
	assert.Equal(t, OutcomeOffline, h.ctl.Save(ctx, "Personal"))

	h.conn.set(true)
	h.clock.Advance(200 * time.Millisecond)
	assert.Equal(t, OutcomeSkipped, h.ctl.Save(ctx, "Personal"))
	assert.Zero(t, h.store.saveCalls())
}

func TestConcurrentWorkflowIsSkipped(t *testing.T) {
	h := newHarness(t, Options{})
	started := make(chan struct{})
	release := make(chan struct{})
	h.store.onSave = func() {
		close(started)
		<-release
	}
	h.fb.answer = true
	ctx := context.Background()

	var wg sync.WaitGroup
	var first Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = h.ctl.Save(ctx, "Personal")
	}()
	<-started
	assert.Equal(t, StateSaving, h.ctl.State())
	assert.Equal(t, OutcomeSkipped, h.ctl.Delete(ctx))
	h.clock.Advance(time.Hour)
	assert.Equal(t, OutcomeSkipped, h.ctl.Save(ctx, "Other"))
	close(release)
	wg.Wait()

	assert.Equal(t, OutcomeSucceeded, first)
	assert.Equal(t, 1, h.store.saveCalls())
	assert.Zero(t, h.store.deleteCalls())
	assert.Zero(t, h.fb.prompts)
}

func TestDeleteDeclined(t *testing.T) {
	h := newHarness(t, Options{})
	h.fb.answer = false

	out := h.ctl.Delete(context.Background())

	assert.Equal(t, OutcomeDeclined, out)
	assert.Zero(t, h.store.deleteCalls())
	assert.Equal(t, 1, h.fb.prompts)
	assert.Equal(t, StateIdle, h.ctl.State())
	assert.Zero(t, h.nav.count())
	assert.Equal(t, []string{"confirm"}, h.fb.events)
}

func TestDeleteOfflineNeverPrompts(t *testing.T) {
	h := newHarness(t, Options{})
	h.conn.set(false)
	h.fb.answer = true

	out := h.ctl.Delete(context.Background())

	assert.Equal(t, OutcomeOffline, out)
	assert.Zero(t, h.fb.prompts)
	assert.Zero(t, h.store.deleteCalls())
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, DefaultMessages.ConnectionTitle, h.fb.alerts[0].Title)
}

func TestDeleteFailedShowsServiceMessage(t *testing.T) {
	h := newHarness(t, Options{})
	h.fb.answer = true
	h.store.deleteRes = folder.FailureMessage("In use")

	out := h.ctl.Delete(context.Background())

	assert.Equal(t, OutcomeFailed, out)
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, "In use", h.fb.alerts[0].Message)
	assert.Equal(t, []string{"f1"}, h.store.deleted)
	assert.Equal(t, []string{"confirm", "progress:Deleting...", "hide", "alert:An error has occurred.|In use"}, h.fb.events)
	assert.Zero(t, h.nav.count())
	assert.Equal(t, StateIdle, h.ctl.State())
}

func TestDeleteUnknownFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.fb.answer = true
	h.store.deleteRes = folder.Failure()

	assert.Equal(t, OutcomeFailedUnknown, h.ctl.Delete(context.Background()))
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, alert{Message: "An error has occurred."}, h.fb.alerts[0])
}

func TestDeleteSucceedsAndRetiresController(t *testing.T) {
	h := newHarness(t, Options{})
	h.fb.answer = true
	ctx := context.Background()

	out := h.ctl.Delete(ctx)

	assert.Equal(t, OutcomeSucceeded, out)
	assert.Equal(t, []string{"Folder deleted"}, h.fb.toasts)
	assert.Equal(t, 1, h.nav.count())
	assert.Empty(t, h.an.events)
	assert.Zero(t, h.fb.overlaps)
	assert.Equal(t, StateUnavailable, h.ctl.State())

	h.clock.Advance(time.Hour)
	assert.Equal(t, OutcomeUnavailable, h.ctl.Save(ctx, "Personal"))
	assert.Equal(t, OutcomeUnavailable, h.ctl.Delete(ctx))
	assert.Zero(t, h.store.saveCalls())
	assert.Equal(t, 1, h.store.deleteCalls())
}

func TestDeleteIsNotDebouncedByDefault(t *testing.T) {
	h := newHarness(t, Options{})
	h.fb.answer = false
	ctx := context.Background()

	h.ctl.Delete(ctx)
	h.ctl.Delete(ctx)

	assert.Equal(t, 2, h.fb.prompts)
}

func TestGuardDeleteOption(t *testing.T) {
	h := newHarness(t, Options{GuardDelete: true, GuardWindow: time.Second})
	h.fb.answer = false
	ctx := context.Background()

	assert.Equal(t, OutcomeDeclined, h.ctl.Delete(ctx))
	assert.Equal(t, OutcomeSkipped, h.ctl.Delete(ctx))
	assert.Equal(t, 1, h.fb.prompts)

	// save has its own guard
	h.store.saveRes = folder.Unknown()
	assert.Equal(t, OutcomeFailedUnknown, h.ctl.Save(ctx, "Personal"))
}

func TestMissingFolderIsUnavailable(t *testing.T) {
	h := newHarness(t, Options{})
	nav := &fakeNavigator{}
	d := h.deps()
	d.Navigator = nav

	ctl, err := New(context.Background(), "missing", d, Options{})

	require.NoError(t, err)
	assert.Equal(t, StateUnavailable, ctl.State())
	assert.Equal(t, 1, nav.count())
	assert.Equal(t, OutcomeUnavailable, ctl.Save(context.Background(), "x"))
	assert.Equal(t, OutcomeUnavailable, ctl.Delete(context.Background()))
	assert.False(t, ctl.Appear(context.Background()))
	assert.Zero(t, h.store.saveCalls())
	assert.Zero(t, h.store.deleteCalls())
	assert.Zero(t, h.fb.prompts)
	assert.Equal(t, 1, nav.count())
}

func TestUndecodableNameIsUnavailable(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.folders["raw"] = folder.Folder{ID: "raw", Name: "plaintext"}
	nav := &fakeNavigator{}
	d := h.deps()
	d.Navigator = nav

	ctl, err := New(context.Background(), "raw", d, Options{})

	require.NoError(t, err)
	assert.Equal(t, StateUnavailable, ctl.State())
	assert.Equal(t, 1, nav.count())
}

func TestLoadErrorIsReturned(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.getErr = errors.New("connection refused")

	_, err := New(context.Background(), "f1", h.deps(), Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRequiredDeps(t *testing.T) {
	_, err := New(context.Background(), "f1", Deps{}, Options{})
	assert.Error(t, err)
}

func TestOptionalDepsDefault(t *testing.T) {
	h := newHarness(t, Options{})
	d := h.deps()
	d.Analytics = nil
	d.Navigator = nil
	d.Clock = nil
	ctl, err := New(context.Background(), "f1", d, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, ctl.Save(context.Background(), "Personal"))
}

func TestAppearRechecksConnectivity(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	assert.True(t, h.ctl.Appear(ctx))
	assert.Empty(t, h.fb.alerts)

	h.conn.set(false)
	assert.False(t, h.ctl.Appear(ctx))
	require.Len(t, h.fb.alerts, 1)
	assert.Equal(t, DefaultMessages.ConnectionMessage, h.fb.alerts[0].Message)
	assert.Equal(t, StateIdle, h.ctl.State())
	assert.Zero(t, h.store.saveCalls())
}

func TestCustomMessages(t *testing.T) {
	h := newHarness(t, Options{})
	ctl, err := New(context.Background(), "f1", h.deps(), Options{Messages: Messages{FolderUpdated: "Ordner aktualisiert"}})
	require.NoError(t, err)

	ctl.Save(context.Background(), "Privat")

	assert.Equal(t, []string{"Ordner aktualisiert"}, h.fb.toasts)
	assert.Equal(t, []string{"progress:Saving...", "hide", "toast:Ordner aktualisiert"}, h.fb.events)
}

func TestOutcomeAndStateStrings(t *testing.T) {
	assert.Equal(t, "failed_unknown", OutcomeFailedUnknown.String())
	assert.Equal(t, "connectivity_check", StateConnectivityCheck.String())
	assert.Equal(t, "outcome(99)", Outcome(99).String())
}
