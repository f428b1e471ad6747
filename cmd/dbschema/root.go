package main

import (
	"fmt"
	"github.com/Maksumys/dbschema"
	"github.com/Maksumys/dbschema/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"log/slog"
	"strings"
)

type options struct {
	configPath  string
	tag         string
	rollback    string
	skipMissing bool
	logLevel    string

	logger *slog.Logger
}

func newRootCommand(env *config.Env) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dbschema",
		Short: "Apply ordered SQL migrations to MySQL and PostgreSQL databases",
		Long: "dbschema applies the pending migrations of every database described in the\n" +
			"configuration file, or rolls back a single migration of one database.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := opts.manager()
			if err != nil {
				return err
			}

			if opts.rollback != "" {
				if opts.tag == "" {
					return fmt.Errorf("%w: to rollback a migration you need to specify the database tag", dbschema.ErrConfig)
				}
				return manager.Rollback(cmd.Context(), opts.tag, opts.rollback)
			}
			return manager.Migrate(cmd.Context(), opts.tag)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", env.ConfigPath, "path to the configuration file (default ~/"+config.DefaultFileName+")")
	flags.StringVarP(&opts.tag, "tag", "t", env.Tag, "database tag to process, all databases when empty")
	flags.BoolVarP(&opts.skipMissing, "skip-missing", "s", env.SkipMissing, "skip databases whose migrations folder does not exist")
	flags.StringVar(&opts.logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVarP(&opts.rollback, "rollback", "r", "", "name of the migration to roll back, requires --tag")

	root.SetGlobalNormalizationFunc(normalizeFlagName)

	root.AddCommand(newStatusCommand(opts), newInitCommand(opts))
	return root
}

// normalizeFlagName accepts --skip_missing spelling used by older configurations.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := opts.manager()
			if err != nil {
				return err
			}

			statuses, err := manager.Status(cmd.Context(), opts.tag)
			for _, status := range statuses {
				printStatus(cmd, status)
			}
			return err
		},
	}
}

func printStatus(cmd *cobra.Command, status dbschema.TargetStatus) {
	out := cmd.OutOrStdout()
	if status.Skipped {
		fmt.Fprintf(out, "%s: skipped, migrations folder not found\n", status.Tag)
		return
	}

	fmt.Fprintf(out, "%s: %d applied, %d pending\n", status.Tag, len(status.Applied), len(status.Pending))
	for _, name := range status.Pending {
		fmt.Fprintf(out, "  pending %s\n", name)
	}
}

func newInitCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the migrations_applied table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := opts.manager()
			if err != nil {
				return err
			}
			return manager.InitLedger(cmd.Context(), opts.tag)
		},
	}
}

func (o *options) setupLogging(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", dbschema.ErrConfig, err)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(level)

	o.logger = slog.New(newLogrusHandler(logger))
	return nil
}

// manager builds a manager holding every database of the configuration file.
func (o *options) manager() (*dbschema.MigrationManager, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	manager, err := dbschema.NewMigrationsManager(
		dbschema.WithLogger(o.logger),
		dbschema.WithSkipMissing(o.skipMissing),
	)
	if err != nil {
		return nil, err
	}

	for _, tag := range cfg.Tags() {
		if err = manager.RegisterTarget(tag, cfg.Databases[tag]); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
