// Package cmd wires the tidyflow command-line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Broccolito/TidyFlow/internal/config"
	"github.com/Broccolito/TidyFlow/internal/sandbox"
	"github.com/Broccolito/TidyFlow/internal/server"
	"github.com/Broccolito/TidyFlow/internal/session"
)

var (
	flagDebug    bool
	flagHTTP     bool
	flagHTTPAddr string
)

var rootCmd = &cobra.Command{
	Use:   "tidyflow",
	Short: "MCP server for generating, managing and executing R scripts",
	Long: "tidyflow exposes R script management and execution as MCP tools, " +
		"confined to a single user-designated working directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tidyflow version",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.Default()
		}
		fmt.Printf("%s v%s\n", cfg.Server.Name, cfg.Server.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&flagHTTP, "http", false, "Enable HTTP/SSE transport instead of stdio")
	rootCmd.Flags().StringVar(&flagHTTPAddr, "http-addr", ":8080", "Listen address for HTTP/SSE transport")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	rootCmd.AddCommand(versionCmd)
}

func serve() error {
	// Logs go to stderr; stdout carries the MCP stdio framing.
	logLevel := slog.LevelInfo
	if flagDebug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger.Info("Starting tidyflow MCP server",
		"version", cfg.Server.Version,
		"debug", flagDebug,
		"http_mode", flagHTTP,
	)

	store := sandbox.NewStateStore(logger)
	runner := sandbox.NewRunner(logger)
	sess := session.NewManager(cfg, store, runner, logger)
	srv := server.NewMCPServer(cfg, sess, logger)

	if flagHTTP {
		return srv.ServeHTTP(flagHTTPAddr)
	}
	return srv.Serve()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
