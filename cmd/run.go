package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/logql-transpiler/internal/config"
	"github.com/kubev2v/logql-transpiler/internal/handlers"
	"github.com/kubev2v/logql-transpiler/internal/server"
	"github.com/kubev2v/logql-transpiler/internal/services"
	"github.com/kubev2v/logql-transpiler/internal/store"
	"github.com/kubev2v/logql-transpiler/pkg/scheduler"
)

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the compile API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfiguration(cfg); err != nil {
				return err
			}

			zap.S().Infow("starting server", "configuration", cfg.DebugMap())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	flags := runCmd.Flags()
	flags.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "Port of the HTTP server")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod. prod serves TLS")
	flags.DurationVar(&cfg.Server.ShutdownTimeout, "server-shutdown-timeout", cfg.Server.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	flags.BoolVar(&cfg.Auth.Enabled, "authentication-enabled", cfg.Auth.Enabled, "Require a JWT bearer token")
	flags.StringVar(&cfg.Auth.JWTFilePath, "authentication-jwt-filepath", cfg.Auth.JWTFilePath, "Path of the PEM RSA public key verifying tokens")
	flags.IntVar(&cfg.Transpiler.NumWorkers, "num-workers", cfg.Transpiler.NumWorkers, "Workers compiling batch requests")
	flags.IntVar(&cfg.Transpiler.MaxBatchSize, "max-batch-size", cfg.Transpiler.MaxBatchSize, "Maximum number of queries in a batch request")
	flags.BoolVar(&cfg.History.Enabled, "history-enabled", cfg.History.Enabled, "Record compiled queries")
	flags.StringVar(&cfg.History.DBPath, "history-db-path", cfg.History.DBPath, "DuckDB file of the query history, :memory: keeps it in memory")
	flags.Uint64Var(&cfg.History.MaxEntries, "history-max-entries", cfg.History.MaxEntries, "Number of history entries kept")
	registerTranspilerFlags(flags, cfg)

	return runCmd
}

func run(ctx context.Context, cfg *config.Configuration) error {
	tr, err := newTranspiler(cfg)
	if err != nil {
		return err
	}

	var history *services.HistoryService
	if cfg.History.Enabled {
		st, err := store.Open(ctx, cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				zap.S().Errorw("failed to close history database", "error", err)
			}
		}()
		history = services.NewHistoryService(st, cfg.History.MaxEntries)
	}

	sched := scheduler.NewScheduler(cfg.Transpiler.NumWorkers)
	defer sched.Close()

	h := handlers.New(services.NewTranspilerService(tr, sched, history, cfg.Transpiler.MaxBatchSize), history)

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()
	zap.S().Infow("server listening", "port", cfg.Server.HTTPPort, "mode", cfg.Server.ServerMode)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)

	return <-errCh
}
