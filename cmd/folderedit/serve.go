package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/folderedit/internal/metrics"
	"github.com/loykin/folderedit/internal/server"
	"github.com/loykin/folderedit/internal/store"
	ftls "github.com/loykin/folderedit/internal/tls"
)

// ServeFlags override the [server] and [store] sections.
type ServeFlags struct {
	Listen   string
	Engine   string
	StoreDSN string
	BasePath string
}

func createServeCommand(flags *GlobalFlags, s streams) *cobra.Command {
	sf := &ServeFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the folder service",
		Long: `Run the folder service over HTTP(S).

Examples:
  folderedit serve                                   # in-memory store on 127.0.0.1:8080
  folderedit serve --store sqlite://folders.db
  folderedit serve --store postgres://u:p@db/vault --engine echo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, s, func(_ context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return runServe(ctx, a, sf, nil)
			})
		},
	}
	cmd.Flags().StringVar(&sf.Listen, "listen", "", "listen address, overrides [server].listen")
	cmd.Flags().StringVar(&sf.Engine, "engine", "", "http engine: gin or echo")
	cmd.Flags().StringVar(&sf.StoreDSN, "store", "", "store DSN, overrides [store].dsn")
	cmd.Flags().StringVar(&sf.BasePath, "base-path", "/api", "mount point of the API")
	return cmd
}

// runServe serves until ctx is done. When ready is non-nil it receives the bound address.
func runServe(ctx context.Context, a *app, sf *ServeFlags, ready chan<- string) error {
	sc := a.cfg.Server
	if sf.Listen != "" {
		sc.Listen = sf.Listen
	}
	if sf.Engine != "" {
		sc.Engine = sf.Engine
	}
	if sc.Engine != "gin" && sc.Engine != "echo" && sc.Engine != "" {
		return fmt.Errorf("unknown engine %q", sc.Engine)
	}
	dsn := a.cfg.Store.DSN
	if sf.StoreDSN != "" {
		dsn = sf.StoreDSN
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	tlsCfg, err := ftls.SetupTLS(sc)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	r := server.NewRouter(st, sf.BasePath).
		WithRateLimit(sc.RateLimit, sc.RateBurst).
		WithLogger(a.log)
	srv := server.NewServer(sc.Listen, r.HandlerFor(sc.Engine))
	srv.TLSConfig = tlsCfg

	ln, err := net.Listen("tcp", sc.Listen)
	if err != nil {
		return err
	}
	a.log.Info("folder service listening", "addr", ln.Addr().String(), "engine", sc.Engine, "tls", tlsCfg != nil, "base", r.BasePath())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsCfg != nil {
			errCh <- srv.ServeTLS(ln, "", "")
		} else {
			errCh <- srv.Serve(ln)
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.log.Info("folder service shutting down")
	return srv.Shutdown(shutdownCtx)
}
