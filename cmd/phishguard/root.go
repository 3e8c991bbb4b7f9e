package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/server"
)

// options are the global flags.
type options struct {
	envFiles []string
	verbose  bool
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "phishguard",
		Short: "PhishGuard navigation guard agent",
		Long: `phishguard runs the navigation guard that sits behind the PhishGuard
browser extension. It checks every navigation against the remote analysis
service, enforces verdicts on tabs over the extension bridge and manages the
personal block list.

Configuration comes from the environment, optionally from .env files.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env and the user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newIDCmd(opts))
	cmd.AddCommand(newBlockedCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads .env files and the environment.
func (o *options) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return nil, err
	}
	return config.Load()
}

// components builds the agent for one-shot commands. Logs stay quiet unless
// --verbose is set.
func (o *options) components(ctx context.Context) (*server.Components, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return server.Build(ctx, cfg, logging.NewFromLevel(level, o.verbose))
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
