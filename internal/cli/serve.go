package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/giotroni/DB-VP/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and dashboard",
	Long: `Starts the HTTP server: a JSON API for triggering imports and
inspecting run history, plus an HTML dashboard and per-run report pages.
Imports run one at a time; a request while one is in flight gets a 409.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			host, port, found := strings.Cut(serveAddr, ":")
			if !found {
				return fmt.Errorf("invalid --addr %q, want host:port", serveAddr)
			}
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid --addr port %q: %w", port, err)
			}
			c.Server.Host = host
			c.Server.Port = p
		}

		poolConfig, err := pgxpool.ParseConfig(c.Database.URL)
		if err != nil {
			return fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(c.Database.MaxConns)

		ctx := cmd.Context()
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		server := web.NewServer(pool, c)

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
			}
		}()

		slog.Info("server starting", "addr", c.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address as host:port (overrides SERVER_HOST/SERVER_PORT)")

	rootCmd.AddCommand(serveCmd)
}
