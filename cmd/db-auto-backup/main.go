package main

import (
	"os"

	"github.com/shyim/db-auto-backup/internal/config"
	"github.com/spf13/cobra"

	// Import backup types for self-registration
	_ "github.com/shyim/db-auto-backup/internal/backuptypes"

	// Import notifiers for self-registration
	_ "github.com/shyim/db-auto-backup/internal/notifiers"
)

var (
	cfg = config.FromEnv(os.Environ())

	rootCmd = &cobra.Command{
		Use:   "db-auto-backup",
		Short: "Dump every database container on a Docker host",
		Long: "Finds running PostgreSQL, MySQL and MariaDB containers, dumps each of them " +
			"into the backup directory and optionally reports the run to healthchecks.io.",
		SilenceUsage: true,
		RunE:         runBackup,
	}
)

func init() {
	// Global flags, defaulting to the environment
	rootCmd.PersistentFlags().StringVar(&cfg.DockerHost, "docker-host", cfg.DockerHost, "Docker daemon socket")
	rootCmd.PersistentFlags().StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "Directory the dumps are written to")
	rootCmd.PersistentFlags().StringArrayVar(&cfg.MatchArgs, "match", cfg.MatchArgs, "Extra image pattern (format: pattern=type)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")

	rootCmd.Flags().BoolVar(&cfg.DetailedReport, "detailed-report", cfg.DetailedReport, "Include the duration of every dump in the report")
	rootCmd.Flags().StringVar(&cfg.HealthchecksID, "healthchecks-id", cfg.HealthchecksID, "healthchecks.io check id to ping")
	rootCmd.Flags().StringVar(&cfg.HealthchecksHost, "healthchecks-host", cfg.HealthchecksHost, "healthchecks.io ping host")
	rootCmd.Flags().StringArrayVar(&cfg.NotifyArgs, "notify", []string{}, "Notification provider configuration (format: provider.option=value)")

	rootCmd.AddCommand(targetsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
