package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/diag"
	"github.com/ironsheep/setcards-mcp/internal/server"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "setcards-mcp",
		Short: "MCP server that finds Set cards in photographs",
		Long: `setcards-mcp detects the cards of a Set layout photographed in a 3-row grid
and finds the valid Sets among them.

Run without a subcommand it serves MCP over stdin/stdout; configure it in your
MCP client (e.g., Claude Desktop).

Environment variables:
  SETCARDS_CONFIG=path         YAML configuration file
  SETCARDS_LOG_LEVEL=debug     Enable debug logging on stderr`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("setcards-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (default $"+config.EnvConfigPath+")")

	root.AddCommand(newServeCmd(opts), newDetectCmd(opts))
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

// loadConfig reads the --config file when given, otherwise the environment.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath == "" {
		return config.FromEnv()
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if level := os.Getenv(config.EnvLogLevel); level != "" {
		cfg.Server.LogLevel = level
	}
	return cfg, nil
}

func runServe(opts *rootOptions) error {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := diag.FromLevel(cfg.Server.LogLevel)
	logger.Printf("Set cards MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
