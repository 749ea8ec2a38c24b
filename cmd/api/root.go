package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/songhub/backend/internal/config"
	"github.com/songhub/backend/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var envFile string

// rootCmd runs the API server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "songhub",
	Short: "Songhub - song and lyrics library API",
	Long: `Songhub serves a song/lyrics catalog: visitors browse public songs grouped by
category, administrators manage songs, categories and cover images.

Configuration is read from the environment (optionally from a .env file).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, backupCmd, hashPasswordCmd)
}

// bootstrap loads the environment and builds the config and logger shared by all commands.
func bootstrap() (*config.Config, *log.Logger) {
	envErr := godotenv.Load(envFile)
	cfg := config.New()
	l := logger.New(os.Stderr, cfg.LogLevel)
	if envErr != nil {
		l.Debug("no env file loaded, using environment variables", "file", envFile)
	}
	return cfg, l
}
