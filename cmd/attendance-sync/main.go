package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"axiapac.com/attendance/attendance/app"
	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/config"
	"axiapac.com/attendance/infrastructure/devops"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-sync",
	Short: "Synchronise attendance between a spreadsheet and the datastore",
	Long: `attendance-sync copies new rows from the attendance sheet into the
datastore (inbound) and exports stored records back to the sheet (outbound).

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd, inboundCmd, outboundCmd, migrateCmd, runsCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates configuration mistakes from runtime failures for
// schedulers that alert on them differently.
func exitCode(err error) int {
	switch core.CodeOf(err) {
	case core.CodeConfig, core.CodeValidation:
		return 2
	case core.CodePartial:
		return 3
	default:
		return 1
	}
}

func parameterStore(ctx context.Context) (config.ParameterReader, error) {
	return devops.NewParameterStore(ctx)
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(ctx, parameterStore)
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg, log.New(os.Stderr, "", log.LstdFlags))
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
