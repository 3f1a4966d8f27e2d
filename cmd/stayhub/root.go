package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonny/stayhub/internal/config"
	"github.com/jonny/stayhub/internal/domain/service"
	"github.com/jonny/stayhub/pkg/version"
)

const defaultConfigPath = "configs/config.yaml"

func newRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "stayhub",
		Short:         "Telegram hub for running a holiday rental",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newActionsCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the webhook server and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger = buildLogger(cfg.Logging)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")
	return cmd
}

func newActionsCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the actions and slash commands the configuration enables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			printActions(cmd, cfg)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")
	return cmd
}

func printActions(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Actions:")
	for _, name := range enabledActions(cfg) {
		confirm := ""
		if slices.Contains(cfg.Actions.AlwaysConfirm, name) {
			confirm = " (always confirmed)"
		}
		fmt.Fprintf(out, "  %s%s\n", name, confirm)
	}
	fmt.Fprintln(out, "Commands:")
	for _, c := range slashCommands(cfg) {
		fmt.Fprintf(out, "  /%s -> %s", c.Name, c.Action)
		if c.RequireConfirm {
			fmt.Fprint(out, " [confirm]")
		}
		if c.Description != "" {
			fmt.Fprintf(out, "  %s", c.Description)
		}
		fmt.Fprintln(out)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// enabledActions returns the action names serve registers for cfg.
func enabledActions(cfg *config.Config) []string {
	names := []string{"assess_guest"}
	if cfg.Actions.Lights.Enabled {
		names = append(names, "lights_off")
	}
	if len(cfg.Actions.Shutdown.Targets) > 0 {
		names = append(names, "shutdown_server")
	}
	slices.Sort(names)
	return names
}

// slashCommands converts the configured command table, falling back to the
// built-in one.
func slashCommands(cfg *config.Config) []service.SlashCommand {
	if len(cfg.Actions.Commands) == 0 {
		return service.DefaultCommands()
	}
	cmds := make([]service.SlashCommand, 0, len(cfg.Actions.Commands))
	for _, c := range cfg.Actions.Commands {
		cmds = append(cmds, service.SlashCommand{
			Name:           strings.ToLower(strings.TrimPrefix(c.Name, "/")),
			Action:         c.Action,
			Parameters:     c.Parameters,
			RequireConfirm: c.RequireConfirm,
			Description:    c.Description,
			ArgParam:       c.ArgParam,
		})
	}
	return cmds
}

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
