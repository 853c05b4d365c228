// Command weddingctl runs the wedding site services and manages their data.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-site/pkg/config"
	"wedding-site/pkg/logger"
)

var envName string

var rootCmd = &cobra.Command{
	Use:           "weddingctl",
	Short:         "Wedding site services and content tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// config.LoadConfig picks the dotenv file from ENVIRONMENT
		if envName != "" {
			return os.Setenv("ENVIRONMENT", envName)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment: development | production (default: $ENVIRONMENT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig 加载并校验配置
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, service string) zerolog.Logger {
	log := logger.New(cfg, service)
	if cfg.UsingDefaultJWTSecret() {
		log.Warn().Msg("JWT_SECRET is the development placeholder")
	}
	return log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
