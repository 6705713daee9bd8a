package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kesher-io/kesher/internal/infrastructure/config"
	"github.com/kesher-io/kesher/internal/infrastructure/database"
	"github.com/kesher-io/kesher/internal/infrastructure/migration"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/seeds"
	"github.com/kesher-io/kesher/internal/infrastructure/repository"
	"github.com/kesher-io/kesher/internal/interfaces/cli"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const scriptsPath = "./internal/infrastructure/migration/scripts"

var (
	env        string
	configPath string
	name       string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, creating new migration files and seeding defaults.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
		newSeedCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new timestamped SQL migration in the scripts directory.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load default message templates",
		Long:  `Create the default email templates used by reminders, invoices and sequences. Existing templates are kept.`,
		RunE:  runSeed,
	}
}

// gooseFor returns the goose strategy, which only serves MySQL.
func gooseFor(cfg *config.Config, log logger.Interface) (*migration.GooseStrategy, error) {
	g, ok := migration.ForDriver(cfg.Database.Driver, log).(*migration.GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("this command needs the mysql driver, configured driver is %q", cfg.Database.Driver)
	}
	return g, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	strategy := migration.ForDriver(cfg.Database.Driver, log)
	log.Infow("running up migrations", "environment", env, "strategy", strategy.GetName())

	if err := strategy.Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	g, err := gooseFor(cfg, log)
	if err != nil {
		return err
	}

	log.Infow("running down migrations", "environment", env, "steps", steps)
	if err := g.MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	g, err := gooseFor(cfg, log)
	if err != nil {
		return err
	}

	version, err := g.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	latest, err := g.LatestVersion()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Current Version: %d\n", version)
	fmt.Fprintf(out, "  Latest Version:  %d\n\n", latest)

	if err := g.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

// runCreate only writes a file, so it needs neither config nor database.
func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger()

	if err := migration.NewGooseStrategy(log).Create(scriptsPath, name); err != nil {
		log.Errorw("failed to create migration", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, scriptsPath)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, log, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	created, err := seeds.SeedMessageTemplates(context.Background(), repository.NewMessageTemplateRepository(database.Get()))
	if err != nil {
		log.Errorw("failed to seed message templates", "error", err)
		return fmt.Errorf("seed failed: %w", err)
	}

	log.Infow("message templates seeded", "created", created)
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d message template(s)\n", created)
	return nil
}
