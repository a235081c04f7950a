package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/loykin/folderedit/internal/cipher"
	"github.com/loykin/folderedit/internal/connectivity"
	"github.com/loykin/folderedit/internal/feedback"
	"github.com/loykin/folderedit/internal/folder"
	"github.com/loykin/folderedit/internal/guard"
	"github.com/loykin/folderedit/internal/metrics"
)

// Deps are the collaborators a Controller drives. Store, Probe, Feedback and Cipher
// are required; Analytics and Navigator default to no-ops.
type Deps struct {
	Store     folder.Store
	Probe     connectivity.Probe
	Feedback  feedback.Channel
	Analytics Analytics
	Navigator Navigator
	Cipher    cipher.Transform
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Options tune a Controller.
type Options struct {
	// GuardWindow is the debounce window for Save (and Delete when GuardDelete is set).
	GuardWindow time.Duration
	// GuardDelete also debounces Delete. Off by default: Delete is gated by a
	// confirmation prompt instead.
	GuardDelete bool
	Messages    Messages
}

// Controller edits or deletes one folder.
// At most one workflow runs at a time; a call made while another is in flight
// returns OutcomeSkipped.
type Controller struct {
	deps Deps
	msg  Messages
	log  *slog.Logger
	gate *connectivity.Gate

	saveGuard   *guard.Guard
	deleteGuard *guard.Guard

	busy sync.Mutex

	mu     sync.Mutex
	state  State
	record folder.Folder
	name   string
}

// New loads the folder id and returns a controller for it.
// When the folder does not exist, or its name cannot be decoded, the controller is
// returned in StateUnavailable after navigating back once. Only a failure to reach
// the store is returned as an error.
func New(ctx context.Context, id string, deps Deps, opts Options) (*Controller, error) {
	if deps.Store == nil || deps.Probe == nil || deps.Feedback == nil || deps.Cipher == nil {
		return nil, errors.New("controller: store, probe, feedback and cipher are required")
	}
	if deps.Analytics == nil {
		deps.Analytics = noopAnalytics{}
	}
	if deps.Navigator == nil {
		deps.Navigator = noopNavigator{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	msg := opts.Messages.withDefaults()

	c := &Controller{
		deps: deps,
		msg:  msg,
		log:  log.With("folder_id", id),
		gate: connectivity.NewGate(deps.Probe, deps.Feedback, connectivity.Notice{
			Title:   msg.ConnectionTitle,
			Message: msg.ConnectionMessage,
			OK:      msg.OK,
		}),
		saveGuard: guard.New(opts.GuardWindow, deps.Clock),
	}
	if opts.GuardDelete {
		c.deleteGuard = guard.New(opts.GuardWindow, deps.Clock)
	}

	rec, err := deps.Store.Get(ctx, id)
	if errors.Is(err, folder.ErrNotFound) {
		c.record = folder.Folder{ID: id}
		c.becomeUnavailable(ctx, "folder not found")
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load folder %s: %w", id, err)
	}
	name, err := deps.Cipher.Decode(rec.Name)
	if err != nil {
		c.record = rec
		c.becomeUnavailable(ctx, "folder name could not be decoded: "+err.Error())
		return c, nil
	}
	c.record = rec
	c.name = name
	c.state = StateIdle
	return c, nil
}

func (c *Controller) becomeUnavailable(ctx context.Context, reason string) {
	c.setState(StateUnavailable)
	c.log.Warn("folder unavailable, leaving page", "reason", reason)
	c.deps.Navigator.GoBack(ctx)
}

// State returns the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Record returns the folder as last loaded or saved.
func (c *Controller) Record() folder.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Name returns the decoded name of the folder, the initial value of the editor.
func (c *Controller) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	if prev == StateUnavailable {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.log.Debug("state", "from", prev.String(), "to", s.String())
	}
}

func (c *Controller) finish(op string, o Outcome) {
	c.setState(StateIdle)
	metrics.IncMutation(op, o.String())
	switch o {
	case OutcomeSucceeded:
		c.log.Info("workflow finished", "op", op, "outcome", o.String())
	case OutcomeFailed, OutcomeFailedUnknown:
		c.log.Warn("workflow finished", "op", op, "outcome", o.String())
	default:
		c.log.Debug("workflow finished", "op", op, "outcome", o.String())
	}
}

// Appear re-checks connectivity when the page becomes visible and shows the
// connection notice if needed. It is independent of any running workflow.
func (c *Controller) Appear(ctx context.Context) bool {
	if c.State() == StateUnavailable {
		return false
	}
	return c.gate.Allow(ctx)
}

// Save renames the folder to name.
func (c *Controller) Save(ctx context.Context, name string) (out Outcome) {
	if c.State() == StateUnavailable {
		return OutcomeUnavailable
	}
	if !c.busy.TryLock() {
		return OutcomeSkipped
	}
	defer c.busy.Unlock()
	defer func() { c.finish("save", out) }()

	c.setState(StateGuarding)
	if !c.saveGuard.Try() {
		return OutcomeSkipped
	}

	c.setState(StateConnectivityCheck)
	if !c.gate.Allow(ctx) {
		return OutcomeOffline
	}

	c.setState(StateValidating)
	if strings.TrimSpace(name) == "" {
		c.deps.Feedback.Alert(ctx, c.msg.ErrorTitle, fmt.Sprintf(c.msg.FieldRequired, c.msg.NameField), c.msg.OK)
		return OutcomeInvalid
	}
	encoded, err := c.deps.Cipher.Encode(name)
	if err != nil {
		c.log.Error("encode folder name", "error", err)
		c.deps.Feedback.Alert(ctx, "", c.msg.ErrorTitle, c.msg.OK)
		return OutcomeFailedUnknown
	}
	updated := c.Record().WithName(encoded)

	c.setState(StateSaving)
	res := c.call(ctx, "save", c.msg.Saving, func(ctx context.Context) folder.Result {
		return c.deps.Store.Save(ctx, updated)
	})
	out = c.report(ctx, res)
	if out == OutcomeSucceeded {
		c.mu.Lock()
		c.record = updated
		c.name = name
		c.mu.Unlock()
		c.deps.Feedback.Toast(ctx, c.msg.FolderUpdated)
		c.deps.Analytics.Track(ctx, EventEditedFolder)
		c.deps.Navigator.GoBack(ctx)
	}
	return out
}

// Delete removes the folder after the user confirms.
// After a successful delete the controller is unavailable.
func (c *Controller) Delete(ctx context.Context) (out Outcome) {
	if c.State() == StateUnavailable {
		return OutcomeUnavailable
	}
	if !c.busy.TryLock() {
		return OutcomeSkipped
	}
	defer c.busy.Unlock()
	defer func() { c.finish("delete", out) }()

	if c.deleteGuard != nil {
		c.setState(StateGuarding)
		if !c.deleteGuard.Try() {
			return OutcomeSkipped
		}
	}

	c.setState(StateConnectivityCheck)
	if !c.gate.Allow(ctx) {
		return OutcomeOffline
	}

	c.setState(StateConfirming)
	if !c.deps.Feedback.Confirm(ctx, "", c.msg.ConfirmDelete, c.msg.Yes, c.msg.No) {
		return OutcomeDeclined
	}

	id := c.Record().ID
	c.setState(StateDeleting)
	res := c.call(ctx, "delete", c.msg.Deleting, func(ctx context.Context) folder.Result {
		return c.deps.Store.Delete(ctx, id)
	})
	out = c.report(ctx, res)
	if out == OutcomeSucceeded {
		c.deps.Feedback.Toast(ctx, c.msg.FolderDeleted)
		c.deps.Navigator.GoBack(ctx)
		c.setState(StateUnavailable)
	}
	return out
}

// call runs fn behind the progress indicator. The indicator is hidden before call
// returns on every path, so no alert or toast can overlap it. A panic in fn is
// reported as an unknown failure. fn cannot be cancelled once issued.
func (c *Controller) call(ctx context.Context, op, label string, fn func(context.Context) folder.Result) (res folder.Result) {
	c.deps.Feedback.ShowProgress(ctx, label)
	metrics.IncInFlight()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("store call panicked", "op", op, "panic", r)
			res = folder.Unknown()
		}
		metrics.DecInFlight()
		metrics.ObserveMutationDuration(op, time.Since(start).Seconds())
		c.deps.Feedback.HideProgress(ctx)
	}()

	return fn(context.WithoutCancel(ctx))
}

func (c *Controller) report(ctx context.Context, res folder.Result) Outcome {
	switch res.Outcome() {
	case folder.Succeeded:
		return OutcomeSucceeded
	case folder.Failed:
		msg, _ := res.FirstMessage()
		c.log.Debug("store rejected mutation", "errors", len(res.Errors()), "first", msg)
		c.deps.Feedback.Alert(ctx, c.msg.ErrorTitle, msg, c.msg.OK)
		return OutcomeFailed
	default:
		c.deps.Feedback.Alert(ctx, "", c.msg.ErrorTitle, c.msg.OK)
		return OutcomeFailedUnknown
	}
}
