package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adps75/irrigation-editor/internal/logging"
	"github.com/Adps75/irrigation-editor/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "irrigationplanner",
		Short:        "Irrigation plan generator: zone areas, pipe network, valves and sprinklers",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	rootCmd.AddCommand(planCmd(&configPath))
	rootCmd.AddCommand(validateCmd(&configPath))
	rootCmd.AddCommand(costCmd(&configPath))
	rootCmd.AddCommand(renderCmd(&configPath))
	rootCmd.AddCommand(serveCmd(&configPath))
	return rootCmd
}

func planCmd(configPath *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "plan [request-file]",
		Short: "Generate an irrigation plan as JSON (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, *configPath, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan to a file instead of stdout")
	return cmd
}

func validateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [request-file]",
		Short: "Validate a planning request without writing a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, *configPath, args[0])
		},
	}
}

func costCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cost [request-file]",
		Short: "Print the bill of materials for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCost(cmd, *configPath, args[0])
		},
	}
}

func renderCmd(configPath *string) *cobra.Command {
	var (
		output string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "render [request-file]",
		Short: "Draw the plan as an SVG preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, *configPath, args[0], output, width)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plan.svg", "SVG output file (- for stdout)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "canvas width in pixels")
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP planning service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger := logging.New(cfg.Logging)
			planner, err := newPlanner(cfg)
			if err != nil {
				return err
			}
			metrics, err := server.NewMetrics(prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("planner.config",
				"projection", cfg.Projection,
				"pipe_type", cfg.Equipment.PipeType,
				"valve_type", cfg.Equipment.ValveType,
				"allow_zone_links", cfg.Network.AllowZoneLinks)
			return server.New(planner, metrics, logger, cfg.Server).Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5000, "HTTP server port")
	return cmd
}
