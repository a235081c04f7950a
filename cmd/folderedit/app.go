package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/loykin/folderedit/internal/analytics"
	"github.com/loykin/folderedit/internal/analytics/factory"
	"github.com/loykin/folderedit/internal/cipher"
	"github.com/loykin/folderedit/internal/config"
	"github.com/loykin/folderedit/internal/connectivity"
	"github.com/loykin/folderedit/internal/controller"
	"github.com/loykin/folderedit/internal/feedback"
	"github.com/loykin/folderedit/pkg/client"
)

// app carries what every command derives from configuration.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	closers []io.Closer
}

func loadApp(flags *GlobalFlags, errOut io.Writer) (*app, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.APIUrl != "" {
		cfg.Client.URL = flags.APIUrl
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	l, closer, err := cfg.Log.New(errOut)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: l, closers: []io.Closer{closer}}, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) client() (*client.Client, error) {
	cc := a.cfg.Client
	cfg := client.Config{
		BaseURL: cc.URL,
		Timeout: cc.Timeout,
		Logger:  a.log,
	}
	if cc.CACert != "" || cc.ClientCert != "" || cc.ServerName != "" || cc.SkipVerify {
		cfg.TLS = &client.TLSClientConfig{
			Enabled:    true,
			CACert:     cc.CACert,
			ClientCert: cc.ClientCert,
			ClientKey:  cc.ClientKey,
			ServerName: cc.ServerName,
			SkipVerify: cc.SkipVerify,
		}
	}
	return client.New(cfg)
}

func (a *app) cipher() (*cipher.XChaCha, error) {
	secret, err := a.cfg.Cipher.CipherSecret()
	if err != nil {
		return nil, err
	}
	return cipher.FromPassphrase(secret)
}

// tracker builds the analytics fan-out. A sink that cannot be opened is
// skipped with a warning; analytics never blocks a command.
func (a *app) tracker() *analytics.Tracker {
	sinks := make([]analytics.Sink, 0, len(a.cfg.Analytics.Sinks))
	for _, dsn := range a.cfg.Analytics.Sinks {
		s, err := factory.NewSinkFromDSN(dsn)
		if err != nil {
			a.log.Warn("analytics sink disabled", "dsn", dsn, "error", err)
			continue
		}
		sinks = append(sinks, s)
	}
	t := analytics.NewTracker(a.cfg.Analytics.Source, a.log, sinks...)
	a.closers = append(a.closers, t)
	return t
}

// navigator records that the workflow left the folder page.
type navigator struct {
	log  *slog.Logger
	left bool
}

func (n *navigator) GoBack(context.Context) {
	n.left = true
	n.log.Debug("leaving folder page")
}

// session is one controller bound to the terminal.
type session struct {
	ctrl    *controller.Controller
	console *feedback.Console
	nav     *navigator
}

func (a *app) session(ctx context.Context, id string, s streams, assumeYes bool) (*session, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	x, err := a.cipher()
	if err != nil {
		return nil, err
	}
	console := feedback.NewConsole(s.in, s.out)
	console.AssumeYes = assumeYes
	console.Logger = a.log
	nav := &navigator{log: a.log}

	// the folder is loaded from the service, so an offline terminal stops here
	if !connectivity.NewGate(c, console, connectivity.DefaultNotice).Allow(ctx) {
		return nil, outcomeErr(controller.OutcomeOffline)
	}

	ctrl, err := controller.New(ctx, id, controller.Deps{
		Store:     c,
		Probe:     c,
		Feedback:  console,
		Analytics: a.tracker(),
		Navigator: nav,
		Cipher:    x,
		Logger:    a.log,
	}, controller.Options{
		GuardWindow: a.cfg.Guard.Window,
		GuardDelete: a.cfg.Guard.Delete,
	})
	if err != nil {
		return nil, err
	}
	if ctrl.State() != controller.StateUnavailable && !ctrl.Appear(ctx) {
		return nil, outcomeErr(controller.OutcomeOffline)
	}
	return &session{ctrl: ctrl, console: console, nav: nav}, nil
}
