package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var code int
	if err := newRootCmd(&code).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "liveview: %v\n", err)
		return 1
	}
	return code
}

// newRootCmd builds the liveview command. The session's exit code is stored
// in code once the command finishes.
func newRootCmd(code *int) *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "liveview [flags] [--] [producer command...]",
		Short: "Watch a multi-agent conversation stream live",
		Long: `liveview starts the agent communication system (by default
"node agent-communication.js") and renders its conversation and status
lines as a colorized, live view. The viewer exits with the producer's
exit code, or 0 when you quit.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = args
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			c, err := app.Run(cmd.Context(), opts)
			*code = c
			return err
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/liveview/config.toml)")
	flags.BoolVar(&opts.Plain, "plain", false, "write plain lines instead of the full-screen view")
	flags.StringVar(&opts.Color, "color", app.ColorAuto, "colorize output: auto, always or never")
	flags.DurationVar(&opts.StatsInterval, "stats-interval", 0, "periodic stats interval (overrides config)")
	flags.BoolVar(&opts.Debug, "debug", false, "count and log unrecognized lines")
	flags.StringVar(&opts.LogFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&opts.NoSummary, "no-summary", false, "skip the per-agent summary on exit")

	return cmd
}
