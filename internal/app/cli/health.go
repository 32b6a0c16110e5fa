package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/toylink/donations/internal/platform/db"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/logger"
)

func healthcheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the running API /healthz endpoint",
		RunE:  runHealthcheck,
	}

	cmd.Flags().String("url", "", "Health endpoint (defaults to http://127.0.0.1:<server.port>/healthz)")
	cmd.Flags().Duration("timeout", 5*time.Second, "Request timeout")

	return cmd
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if url == "" {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		url = fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.Server.Port)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck failed: status %d", resp.StatusCode)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func waitForDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the configured database accepts connections",
		RunE:  runWaitForDB,
	}

	cmd.Flags().Duration("timeout", 30*time.Second, "Give up after this long")
	cmd.Flags().Duration("interval", time.Second, "Delay between attempts")

	return cmd
}

func runWaitForDB(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")

	cfg, err := config.New()
	if err != nil {
		return err
	}
	l, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err = tryDB(ctx, l, cfg)
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "database is ready")
			return nil
		}
		l.Infow("database not ready", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return errors.Join(errors.New("database did not become ready"), err)
		case <-time.After(interval):
		}
	}
}

func tryDB(ctx context.Context, l *zap.SugaredLogger, cfg *config.Config) error {
	gdb, err := db.NewDB(l, cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	return db.Ping(ctx, gdb, 2*time.Second)
}
