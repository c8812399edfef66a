// SPDX-License-Identifier: MIT

// Package cmd wires the eqlab command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eqlab/internal/config"
	"eqlab/internal/log"
	"eqlab/pkg/build"

	"github.com/spf13/cobra"
)

// app carries the global flags and the configuration they resolve to.
type app struct {
	configPath string
	logLevel   string
	verbose    bool
	wsAddress  string
	wait       time.Duration

	cfg *config.Config
}

// Execute runs the command tree against os.Args, cancelling on SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the root command and all subcommands.
func NewRootCommand() *cobra.Command {
	buildInfo := build.Get()
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: a.setup,
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Path to a YAML config file (default: ./eqlab.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&a.wsAddress, "ws-address", config.DefaultWSAddress,
		"Serve results to WebSocket clients on this address, e.g. :8080")
	rootCmd.PersistentFlags().DurationVar(&a.wait, "wait", 10*time.Second,
		"How long to wait for a WebSocket client before sending results")

	rootCmd.AddCommand(
		a.processCommand(),
		a.batchCommand(),
		a.analyzeCommand(),
		a.responseCommand(),
		a.bandsCommand(),
		a.infoCommand(),
	)
	return rootCmd
}

// setup loads the configuration and applies the log level before any
// subcommand runs. Flags win over the file, which wins over defaults.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	levelName := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = a.logLevel
	}
	level, ok := log.ParseLevel(levelName)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelName)
	}
	if a.verbose || cfg.Debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	if cmd.Flags().Changed("ws-address") {
		cfg.Transport.WSAddress = a.wsAddress
	}
	a.cfg = cfg
	log.Debugf("CLI: %s, %d Hz working rate, %d bands", build.Get(), cfg.Processing.SampleRate, len(cfg.Processing.Bands))
	return nil
}

// changedOr returns flagVal when the user set the flag, cfgVal otherwise.
func changedOr[T any](cmd *cobra.Command, name string, flagVal, cfgVal T) T {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	return cfgVal
}
