package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/toylink/donations/internal/app"
	"github.com/toylink/donations/internal/app/service/admin"
	"github.com/toylink/donations/pkg/config"
)

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the dashboard admin account",
		Long: `Create the dashboard admin account if it does not exist yet.
Email and password default to APP_ADMIN_EMAIL and APP_ADMIN_PASSWORD.`,
		RunE: runCreateAdmin,
	}

	cmd.Flags().String("email", "", "Admin email (defaults to admin.email)")
	cmd.Flags().String("password", "", "Admin password (defaults to admin.password)")

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	var (
		svc *admin.Service
		cfg *config.Config
	)
	a := fx.New(
		fx.NopLogger,
		app.Infra,
		fx.Provide(admin.New),
		fx.Populate(&svc, &cfg),
	)
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email == "" {
		email = cfg.Admin.Email
	}
	if password == "" {
		password = cfg.Admin.Password
	}

	created, err := svc.EnsureAdmin(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", email)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", email)
	}
	return nil
}
