package folderedit

import (
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/folderedit/internal/cipher"
	"github.com/loykin/folderedit/internal/connectivity"
	"github.com/loykin/folderedit/internal/controller"
	"github.com/loykin/folderedit/internal/feedback"
	"github.com/loykin/folderedit/internal/folder"
	"github.com/loykin/folderedit/internal/metrics"
	"github.com/loykin/folderedit/internal/server"
	"github.com/loykin/folderedit/internal/store"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Folder = folder.Folder

type Result = folder.Result

type Store = store.Store

type Controller = controller.Controller

type Deps = controller.Deps

type Options = controller.Options

type Messages = controller.Messages

type Outcome = controller.Outcome

type Feedback = feedback.Channel

type Probe = connectivity.Probe

const (
	OutcomeSucceeded     = controller.OutcomeSucceeded
	OutcomeFailed        = controller.OutcomeFailed
	OutcomeFailedUnknown = controller.OutcomeFailedUnknown
	OutcomeInvalid       = controller.OutcomeInvalid
	OutcomeOffline       = controller.OutcomeOffline
	OutcomeDeclined      = controller.OutcomeDeclined
	OutcomeSkipped       = controller.OutcomeSkipped
	OutcomeUnavailable   = controller.OutcomeUnavailable
)

// NewController loads folder id and returns its edit controller.
func NewController(ctx context.Context, id string, deps Deps, opts Options) (*Controller, error) {
	return controller.New(ctx, id, deps, opts)
}

// OpenStore opens a folder store by DSN (memory://, sqlite://, postgres://).
func OpenStore(ctx context.Context, dsn string) (Store, error) { return store.Open(ctx, dsn) }

// NewCipher returns the name transform keyed by passphrase.
func NewCipher(passphrase string) (cipher.Transform, error) { return cipher.FromPassphrase(passphrase) }

// NewConsole returns terminal feedback reading answers from in.
func NewConsole(in io.Reader, out io.Writer) *feedback.Console { return feedback.NewConsole(in, out) }

// Connected is a Probe with a fixed answer.
func Connected(v bool) Probe { return connectivity.Static(v) }

// NewHTTPHandler exposes st as the folder service API under basePath.
func NewHTTPHandler(st Store, basePath string) http.Handler {
	return server.NewRouter(st, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
