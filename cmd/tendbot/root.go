package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnv         = "TENDBOT_CONFIG"
)

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "tendbot",
		Short:         "Spraying and tending machine controller",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig(), "Path to config.yaml (env "+configEnv+")")

	cmd.AddCommand(runCmd(&configPath))
	cmd.AddCommand(checkConfigCmd(&configPath))
	cmd.AddCommand(versionCmd())
	return cmd
}

func defaultConfig() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

func runCmd(configPath *string) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bring up the devices and run the machine until stopped",
		Long: `Bring up the devices and run the machine.

The machine is started, then driven by operator commands until a stop
command, an asserted e-stop line, or SIGINT/SIGTERM. With --once the
machine is started and immediately stopped, which checks bring-up and the
start guard without running any phase.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMachine(ctx, runOptions{
				ConfigPath: *configPath,
				Once:       once,
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Start and stop the machine without waiting for commands")
	return cmd
}

func checkConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the config and print the resolved device map",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return checkConfig(cmd.OutOrStdout(), *configPath)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tendbot %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
