package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"classifyd/internal/httpapi"
	"classifyd/internal/service"
)

func newServeCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return st.serve(ctx, nil)
		},
	}
	addPipelineFlags(cmd)
	addServeFlags(cmd)
	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts down gracefully.
// ready, if non-nil, receives the bound address once the listener is open.
func (st *rootState) serve(ctx context.Context, ready chan<- string) error {
	cfg := st.cfg
	svc, err := service.Open(cfg, st.log, st.deps.Opener)
	if err != nil {
		return err
	}

	httpapi.SetLogger(st.log)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeoutSeconds(cfg.PredictTimeoutSeconds)
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = svc.Close()
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		st.log.Info().Str("addr", ln.Addr().String()).Str("model", cfg.ModelPath).Msg("classifyd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	timeout := time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		st.log.Error().Err(err).Msg("graceful shutdown error")
	}
	cancelBase()
	if err := svc.Shutdown(sctx); err != nil {
		st.log.Error().Err(err).Msg("service shutdown error")
	}
	st.log.Info().Msg("classifyd stopped")
	return serveErr
}
