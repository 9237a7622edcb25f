package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(envFile *string) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Run one reconciliation pass for a report workbook",
		Long: `Reads a Buy Ready or Drop report and reconciles the store against it.

The report kind is taken from --kind or inferred from the file name
("buy ready" or "drop"). Pending migrations are applied first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, *envFile, kind, args[0])
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "report kind: buy_ready or drop")
	return cmd
}

func runImport(cmd *cobra.Command, envFile, kind, path string) error {
	cfg, db, log, err := openStore(envFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsDir()); err != nil {
		return err
	}

	services := service.NewServices(repository.New(db), cfg, log)
	result, err := services.Import.ImportFile(context.Background(), kind, path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	printReport(cmd.OutOrStdout(), result.Job, result.Report, cfg.Import.ReportListLimit)
	return nil
}

// printReport writes a human readable pass summary
func printReport(out io.Writer, job *models.Job, report *models.ReconcileReport, limit int) {
	fmt.Fprintf(out, "Job %s (%s) %s in %dms\n", job.ID, job.Resource, job.Status, job.DurationMs)
	fmt.Fprintf(out, "  rows:       %d\n", job.TotalRecords)
	fmt.Fprintf(out, "  inserted:   %d\n", report.Inserted)
	fmt.Fprintf(out, "  updated:    %d\n", report.Updated)
	if job.Resource == models.ResourceBuyReady {
		fmt.Fprintf(out, "  deleted:    %d\n", report.Deleted)
	}
	fmt.Fprintf(out, "  skipped:    %d\n", report.Skipped)
	fmt.Fprintf(out, "  duplicates: %d\n", report.Duplicates)

	if job.Resource == models.ResourceBuyReady {
		printList(out, "new", report.NewArticles, limit)
		printList(out, "changed", report.ChangedArticles, limit)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(out, "  warnings:   %d\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "    line %d %s: %s\n", w.Line, w.Field, w.Message)
		}
	}
}

func printList(out io.Writer, label string, ids []string, limit int) {
	if len(ids) == 0 {
		return
	}
	shown, cut := models.Truncate(ids, limit)
	line := strings.Join(shown, ", ")
	if cut {
		line += ", ..."
	}
	fmt.Fprintf(out, "  %s (%d): %s\n", label, len(ids), line)
}
