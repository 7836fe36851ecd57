package main

import (
	"fmt"

	"axiapac.com/attendance/attendance/core"
	"github.com/spf13/cobra"
)

var inboundCmd = &cobra.Command{
	Use:   "inbound",
	Short: "Copy new sheet rows into the datastore",
	Long: `Read every data row of the sheet, insert the rows not yet stored and
write a status marker back to each row.

With --reimport every record of this sheet source is deleted first and the
whole sheet is inserted again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reimport, _ := cmd.Flags().GetBool("reimport")

		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		run := a.Reconciler.Sync
		if reimport {
			run = a.Reconciler.Reimport
		}
		result, err := run(cmd.Context())
		if result != nil {
			if tag := outcomeTag(err); tag != "" {
				fmt.Printf("%s %s\n", tag, result.Message())
				printJSON(result)
			}
		}
		return err
	},
}

var outboundCmd = &cobra.Command{
	Use:   "outbound",
	Short: "Export stored records to the sheet",
	Long: `Append the records dated within --start and --end to the sheet.

Both bounds accept ISO dates, "16 Dec 25" style dates and phrases such as
"yesterday". A missing start defaults to the first of the current month and
a missing end to today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Exporter.Export(cmd.Context(), start, end)
		if result != nil && err == nil {
			fmt.Printf("[SUCCESS] %s\n", result.Message())
			printJSON(result)
		}
		return err
	},
}

// outcomeTag picks the log tag for a finished run. Failed runs print nothing
// here; main reports the error.
func outcomeTag(err error) string {
	switch {
	case err == nil:
		return "[SUCCESS]"
	case core.CodeOf(err) == core.CodePartial:
		return "[WARN]"
	default:
		return ""
	}
}

func init() {
	inboundCmd.Flags().Bool("reimport", false, "Delete stored records for this sheet and import every row again")
	outboundCmd.Flags().String("start", "", "First date to export")
	outboundCmd.Flags().String("end", "", "Last date to export")
}
