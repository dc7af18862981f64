package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/michaelscutari/clonehunt/internal/logging"
	"github.com/michaelscutari/clonehunt/internal/prune"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete duplicates listed in a JSON report",
	Long: `Read a JSON report written by "hunt -u json -f FILE" and delete every member
of each group except the last one. Nothing is removed until the prompt is
answered with Y. With --dry-run the same log is printed without touching files.`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

var (
	deleteInput  string
	deleteDryRun bool
	deleteYes    bool
)

func init() {
	deleteCmd.Flags().StringVarP(&deleteInput, "input", "i", "", "JSON report produced by hunt")
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "Print what would be deleted without deleting")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
	deleteCmd.MarkFlagRequired("input")
}

func runDelete(cmd *cobra.Command, args []string) error {
	log := logging.New(os.Stderr, globalVerbose)

	f, err := os.Open(deleteInput)
	if err != nil {
		return fmt.Errorf("the input file you have provided cannot be opened: %w", err)
	}
	records, err := prune.Load(f)
	f.Close()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var confirm prune.Confirmer = prune.PromptConfirmer{In: os.Stdin, Out: os.Stdout}
	if deleteYes {
		confirm = prune.Always(true)
	}

	res, err := prune.New(afero.NewOsFs(), os.Stdout, confirm, deleteDryRun, log).Run(ctx, records)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Delete canceled.")
			return nil
		}
		return err
	}
	log.Debug().
		Bool("dry_run", res.DryRun).
		Int("groups", res.Groups).
		Int("deleted", res.Deleted).
		Int("failed", len(res.Failures)).
		Msg("delete finished")
	return nil
}
