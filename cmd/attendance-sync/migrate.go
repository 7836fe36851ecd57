package main

import (
	"errors"
	"fmt"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/attendance/store"
	"github.com/spf13/cobra"
)

var errNoDatabase = &core.SyncError{Code: core.CodeConfig, Err: errors.New("the configured store driver is not a database")}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the attendance tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.DB == nil {
			return errNoDatabase
		}
		if err := store.Migrate(a.DB); err != nil {
			return err
		}
		fmt.Println("[SUCCESS] Schema is up to date")
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		limit, _ := cmd.Flags().GetInt("limit")
		switch model.SyncDirection(direction) {
		case "", model.SyncInbound, model.SyncOutbound:
		default:
			return core.NewSyncError(core.CodeValidation, "direction must be inbound or outbound, got %q", direction)
		}

		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Runs == nil {
			return errNoDatabase
		}
		runs, err := a.Runs.RecentRuns(cmd.Context(), model.SyncDirection(direction), limit)
		if err != nil {
			return err
		}
		printJSON(runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().String("direction", "", "Only show inbound or outbound runs")
	runsCmd.Flags().Int("limit", 20, "Number of runs to show")
}
