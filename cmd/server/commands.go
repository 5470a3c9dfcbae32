package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/confhub/internal/config"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "confhub",
		Short:         "Configuration registry and resolution service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: ./confhub.yaml or /etc/confhub/confhub.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newAdminCmd(opts),
	)
	return root
}

// bootstrap loads the configuration and sets up logging for a command.
func bootstrap(cmd *cobra.Command, opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := setupAppLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP registry service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			logConfig(cfg, logger)

			app, err := newApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
	}

	for _, c := range []struct {
		command postgres.MigrationCommand
		short   string
	}{
		{postgres.MigrateUp, "Apply all pending migrations"},
		{postgres.MigrateDown, "Roll back the latest migration"},
		{postgres.MigrateStatus, "Show migration status"},
		{postgres.MigrateReset, "Roll back every migration"},
	} {
		command := c.command
		cmd.AddCommand(&cobra.Command{
			Use:   string(command),
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, logger, err := bootstrap(cmd, opts)
				if err != nil {
					return err
				}
				return runMigrations(cmd.Context(), cfg, command, logger)
			},
		})
	}

	return cmd
}

func newAdminCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer projects and operators",
	}

	var projectName string
	projectAdd := &cobra.Command{
		Use:   "project-add",
		Short: "Register a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdminStores(cmd, opts, func(ctx context.Context, stores *postgres.Stores, out io.Writer) error {
				project := &domain.Project{Name: projectName}
				if err := project.Validate(); err != nil {
					return err
				}
				if err := stores.Projects.Create(ctx, project); err != nil {
					return fmt.Errorf("failed to create project %s: %w", projectName, err)
				}
				_, err := fmt.Fprintf(out, "Created project %s with id %d\n", project.Name, project.ID)
				return err
			})
		},
	}
	projectAdd.Flags().StringVar(&projectName, "name", "", "project name")
	_ = projectAdd.MarkFlagRequired("name")

	var (
		operatorID   int64
		operatorName string
		disabled     bool
	)
	operatorAdd := &cobra.Command{
		Use:   "operator-add",
		Short: "Register an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdminStores(cmd, opts, func(ctx context.Context, stores *postgres.Stores, out io.Writer) error {
				op := &domain.Operator{ID: operatorID, Name: operatorName, Enabled: !disabled}
				if err := stores.Operators.Create(ctx, op); err != nil {
					return fmt.Errorf("failed to create operator %d: %w", operatorID, err)
				}
				_, err := fmt.Fprintf(out, "Created operator %d (%s), enabled=%t\n", op.ID, op.Name, op.Enabled)
				return err
			})
		},
	}
	operatorAdd.Flags().Int64Var(&operatorID, "id", 0, "operator id")
	operatorAdd.Flags().StringVar(&operatorName, "name", "", "operator name")
	operatorAdd.Flags().BoolVar(&disabled, "disabled", false, "register the operator as disabled")
	_ = operatorAdd.MarkFlagRequired("id")

	cmd.AddCommand(projectAdd, operatorAdd)
	return cmd
}

// withAdminStores runs fn against the postgres stores. Admin commands
// write durable records, so the memory driver is rejected.
func withAdminStores(
	cmd *cobra.Command,
	opts *rootOptions,
	fn func(ctx context.Context, stores *postgres.Stores, out io.Writer) error,
) error {
	cfg, logger, err := bootstrap(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("admin commands require the %s driver, configured driver is %s",
			config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := setupAppDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(cmd.Context(), postgres.NewStores(db, logger), cmd.OutOrStdout())
}
