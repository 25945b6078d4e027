package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/shyim/db-auto-backup/internal/storage"
	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:     "targets",
	Aliases: []string{"ls"},
	Short:   "List the containers that would be backed up",
	Long:    "List the running containers that match a backup type, together with their last dump.",
	Args:    cobra.NoArgs,
	RunE:    runTargets,
}

func runTargets(cmd *cobra.Command, args []string) error {
	setupLogging()

	ctx := cmd.Context()

	// Listing must not create the backup directory
	store, err := storage.Open(cfg.BackupDir)
	if err != nil {
		return err
	}

	runner, closeRuntime, err := newRunner(ctx, store, nil)
	if err != nil {
		return err
	}
	defer closeRuntime()

	targets, err := runner.Targets(ctx)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No database containers found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER\tTYPE\tIMAGE\tLAST DUMP\tSIZE")
	for _, target := range targets {
		lastDump, size := "-", "-"
		file, err := store.Stat(target.Container.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if file != nil {
			lastDump = file.LastModified.Format("2006-01-02 15:04:05")
			size = units.HumanSize(float64(file.Size))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			target.Container.Name,
			target.Type.Name(),
			strings.Join(target.Container.ImageTags, ","),
			lastDump,
			size,
		)
	}
	return w.Flush()
}
