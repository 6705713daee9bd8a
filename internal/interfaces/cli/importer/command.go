// Package importer wires the spreadsheet contact import into the CLI.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	crmApp "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/infrastructure/database"
	"github.com/kesher-io/kesher/internal/infrastructure/importer"
	"github.com/kesher-io/kesher/internal/infrastructure/repository"
	"github.com/kesher-io/kesher/internal/interfaces/cli"
)

var (
	env        string
	configPath string
	file       string
	sheet      string
	source     string
	dryRun     bool
	jsonOutput bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data from spreadsheets",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newContactsCommand())
	return cmd
}

func newContactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Import contacts from an .xlsx file",
		Long: `Import contacts from the first (or --sheet) worksheet of an Excel file.
The header row is matched case-insensitively in English or Hebrew. Rows are
matched to existing contacts by email, or by phone when there is no email.`,
		RunE: runContacts,
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the .xlsx file (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&source, "source", "import", "Source recorded on new contacts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and report without writing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runContacts(cmd *cobra.Command, args []string) error {
	_, log, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	contacts := crmApp.NewContactService(repository.NewContactRepository(database.Get()), log)
	report, err := importer.NewContactImporter(contacts, log).ImportFile(ctx, file, importer.Options{
		Sheet:  sheet,
		DryRun: dryRun,
		Source: source,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, r *importer.Report) {
	mode := ""
	if r.DryRun {
		mode = " (dry run, nothing saved)"
	}
	fmt.Fprintf(w, "Sheet %q%s\n", r.Sheet, mode)
	fmt.Fprintf(w, "  created: %d\n  updated: %d\n  skipped: %d\n", r.Created, r.Updated, r.Skipped)

	for _, row := range r.Rows {
		if row.Outcome != importer.OutcomeSkipped {
			continue
		}
		fmt.Fprintf(w, "  row %d skipped: %s\n", row.Row, row.Reason)
	}
}
