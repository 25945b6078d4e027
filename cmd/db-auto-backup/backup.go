package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shyim/db-auto-backup/internal/backup"
	"github.com/shyim/db-auto-backup/internal/docker"
	"github.com/shyim/db-auto-backup/internal/notification"
	"github.com/shyim/db-auto-backup/internal/progress"
	"github.com/shyim/db-auto-backup/internal/storage"
	"github.com/spf13/cobra"
)

func runBackup(cmd *cobra.Command, args []string) error {
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Parse notification configs
	if err := cfg.ParseNotifyConfigs(); err != nil {
		return err
	}

	// Initialize notification manager
	notifyMgr := notification.NewManager()
	for name, notifyCfg := range cfg.NotifyConfigs {
		notifier, err := notification.CreateNotifier(notifyCfg.Type, name, notifyCfg.Options)
		if err != nil {
			slog.Error("failed to create notifier", "name", name, "error", err)
			return err
		}
		notifyMgr.AddNotifier(name, notifier)
		slog.Info("notification provider configured", "name", name, "type", notifyCfg.Type)
	}

	store, err := storage.NewLocal(cfg.BackupDir)
	if err != nil {
		slog.Error("failed to prepare backup directory", "path", cfg.BackupDir, "error", err)
		return err
	}

	runner, closeRuntime, err := newRunner(ctx, store, notifyMgr)
	if err != nil {
		return err
	}
	defer closeRuntime()

	slog.Info("starting backup run",
		"docker_host", cfg.DockerHost,
		"backup_dir", cfg.BackupDir,
	)

	report, err := runner.Run(ctx)
	if cfg.DetailedReport && len(report.Outcomes) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), report.String())
	}
	if err != nil {
		slog.Error("backup run failed", "error", err)
		return err
	}

	return nil
}

// newRunner wires the docker client, registry and executor around the given store
func newRunner(ctx context.Context, store backup.Store, notifier backup.Notifier) (*backup.Runner, func(), error) {
	rules, err := cfg.MatchRules()
	if err != nil {
		return nil, nil, err
	}

	registry, err := backup.BuildRegistry(rules)
	if err != nil {
		return nil, nil, err
	}

	dockerClient, err := docker.NewClient(ctx, cfg.DockerHost)
	if err != nil {
		slog.Error("failed to connect to Docker", "error", err)
		return nil, nil, fmt.Errorf("%w: %w", backup.ErrDiscovery, err)
	}

	executor := backup.NewExecutor(dockerClient, store, progress.ForFile(os.Stdout))
	runner := backup.NewRunner(dockerClient, registry, executor, notifier, cfg.DetailedReport)

	return runner, func() { _ = dockerClient.Close() }, nil
}
