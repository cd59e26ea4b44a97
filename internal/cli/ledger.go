package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/promocanvas/pkg/ledger"
)

// ledgerCommand creates the usage ledger command.
func (c *CLI) ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and append to the usage ledger",
	}

	cmd.AddCommand(c.ledgerListCommand())
	cmd.AddCommand(c.ledgerAppendCommand())
	cmd.AddCommand(c.ledgerExportCommand())

	return cmd
}

func (c *CLI) ledgerListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded compositions",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, closeFn, err := c.requireLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := led.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if records == nil {
					records = []ledger.Record{}
				}
				return enc.Encode(records)
			}
			if len(records) == 0 {
				printInfo("Ledger is empty")
				return nil
			}
			for _, r := range records {
				printRecord(r)
			}
			printNewline()
			printDetail("%d record(s)", len(records))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func (c *CLI) ledgerAppendCommand() *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "append identifier [identifier...]",
		Short: "Record a composition without rendering it",
		Args:  cobra.RangeArgs(1, ledger.MaxIdentifiers),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, closeFn, err := c.requireLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return c.recordComposition(cmd.Context(), led, args, feedback)
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "free-text feedback stored with the record")
	return cmd
}

func (c *CLI) ledgerExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, closeFn, err := c.requireLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := led.List(cmd.Context())
			if err != nil {
				return err
			}
			data, err := ledger.MarshalCSV(records)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %d record(s)", len(records))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func printRecord(r ledger.Record) {
	line := StyleNumber.Render(fmt.Sprintf("#%-4d", r.ID)) + " " +
		StyleDim.Render(r.Timestamp.Local().Format(time.DateTime)) + "  " +
		StyleValue.Render(strings.Join(r.Identifiers, ", "))
	if r.Feedback != "" {
		line += StyleDim.Render("  " + iconArrow + " " + r.Feedback)
	}
	fmt.Fprintln(stdout, line)
}
