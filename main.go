package main

import (
	"fmt"
	"os"
	"reasoning/config"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reasoning",
		Short: "Monte Carlo tree search over language model reasoning steps",
		Long: `Reasoning grows a tree of step by step answers to a question. A policy model
proposes the next step, a verifier model scores finished traces and UCB1
decides which branch to extend.

Search a question:      reasoning search "What is sin(60)*cos(60)?"
Try it without a model: reasoning search --dry-run "2+2?"`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reasoning v%s\n", version)
		},
	})
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return initLogging(cfg.Logging)
}

func initLogging(c config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if c.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "reasoning.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Reasoning Configuration:")
			fmt.Fprintln(out, strings.Repeat("─", 24))
			fmt.Fprintf(out, "Iterations:    %d\n", cfg.Search.Iterations)
			fmt.Fprintf(out, "Max Depth:     %s\n", orDerived(cfg.Search.MaxDepth))
			fmt.Fprintf(out, "Max Children:  %s\n", orDerived(cfg.Search.MaxChildren))
			fmt.Fprintf(out, "Policy:        %s %s\n", cfg.Policy.Provider, cfg.Policy.Model)
			fmt.Fprintf(out, "Verifier:      %s %s\n", cfg.Verifier.Provider, cfg.Verifier.Model)
			fmt.Fprintf(out, "Log Level:     %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "Output Dir:    %s\n", cfg.Output.Dir)
			return cfg.Validate()
		},
	})

	return cmd
}

func orDerived(v int) string {
	if v == 0 {
		return "derived"
	}
	return fmt.Sprint(v)
}
