package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/health"
)

// newRootCmd wires the cobra root command.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "avaprobe",
		Short:         "Health, readiness, liveness and startup probes",
		Long:          "avaprobe serves orchestrator probe endpoints backed by database, cache and disk checks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newCheckCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the probe HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", getEnvOrDefault(envConfigPath, ""),
		"Path to configuration file (defaults and environment only when empty)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", getEnvOrDefault(envLogLevel, ""),
		"Override log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", getEnvOrDefault(envLogFormat, ""),
		"Override log format (json, console)")
	return cmd
}

func newCheckCommand() *cobra.Command {
	var (
		addr    string
		probe   string
		prefix  string
		token   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Query a running server and exit non-zero unless the probe succeeds",
		Long: "check performs one GET against a probe endpoint, suitable for a container " +
			"HEALTHCHECK. The exit status is 0 on a 2xx response and 1 otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), checkOptions{
				addr:    addr,
				prefix:  prefix,
				probe:   probe,
				token:   token,
				timeout: timeout,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", getEnvOrDefault(envCheckAddr, "127.0.0.1:8080"), "Server address")
	cmd.Flags().StringVar(&probe, "probe", "ready", "Probe to query (live, ready, startup, report)")
	cmd.Flags().StringVar(&prefix, "prefix", config.DefaultHealthPrefix, "Probe route prefix")
	cmd.Flags().StringVar(&token, "token", getEnvOrDefault(config.EnvHealthToken, ""),
		"Token sent in the "+health.HeaderHealthToken+" header")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "avaprobe version %s\n", version)
	_, _ = fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	_, _ = fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}
