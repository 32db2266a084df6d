package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/buildinfo"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/client"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/config"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/migrator"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/watcher"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the vibecut command tree. args are the raw process
// arguments; the config layer reads its own flags from them, the persistent
// flags below exist so cobra accepts and documents them.
func NewRootCommand(args []string, in io.Reader, out io.Writer) *cobra.Command {
	var (
		cfg *config.Config
		log logging.Logger
	)

	root := &cobra.Command{
		Use:           "vibecut",
		Short:         "Local-first video project editor with cloud sync",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.LoadConfig(args); err != nil {
				return err
			}
			log, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if s, ok := log.(interface{ Sync() error }); ok {
				_ = s.Sync()
			}
		},
	}
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringP("config", "c", "", "config file (json, yaml or toml)")
	f.StringP("api", "a", "", "backend base URL")
	f.StringP("data-dir", "d", "", "local data directory")
	f.String("store", "", "local store driver (sqlite|redis)")
	f.String("redis-addr", "", "redis address")
	f.Duration("timeout", 0, "HTTP timeout")
	f.String("log-format", "", "log format (text|json|zap)")
	f.String("log-level", "", "log level")

	shell := &cobra.Command{
		Use:   "shell",
		Short: "Interactive editor shell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.RunE = shell.RunE

	root.AddCommand(
		shell,
		migrateCmd(&cfg, &log),
		watchCmd(&cfg, &log),
		versionCmd(),
	)
	return root
}

func runShell(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) error {
	app, err := NewApp(ctx, cfg, log, in, out)
	if err != nil {
		return err
	}
	defer app.Close()

	app.auth.Initialize(ctx)
	app.println("Welcome to vibecut (type 'help' for commands)")
	runREPL(ctx, app, func() string { return app.status(ctx) }, app.reader)
	return nil
}

func migrateCmd(cfg **config.Config, log *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade stored projects to the current schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			stores, err := client.OpenStores(ctx, *cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			res, err := migrator.NewRunner(stores.Projects, (*cfg).DataDir, *log).Run(ctx, migrator.Builtin())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d projects.\n", res.MigratedCount)
			return nil
		},
	}
}

func watchCmd(cfg **config.Config, log *logging.Logger) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Import media dropped into a folder into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			app, err := NewApp(ctx, *cfg, *log, cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			defer app.Close()

			app.auth.Initialize(ctx)
			if err := app.Open(ctx, []string{projectID}); err != nil {
				return err
			}

			imp := (*cfg).Import
			w, err := watcher.New(args[0], watcher.Options{
				Debounce: time.Duration(imp.DebounceMs) * time.Millisecond,
				Filter:   watcher.Filter{Include: imp.IncludePatterns, Ignore: imp.IgnorePatterns},
			}, *log)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Start(ctx); err != nil {
				return err
			}

			importer := watcher.NewImporter(args[0], app.media, app.activeProjectID, *log)
			fmt.Fprintf(out, "Watching %s. Press Ctrl+C to stop.\n", args[0])
			importer.Run(ctx, w.Events())

			if err := app.editor.SaveLocal(context.WithoutCancel(ctx)); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project to import into")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Args[1:], os.Stdin, os.Stdout).ExecuteContext(ctx)
}
