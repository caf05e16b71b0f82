package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vncsmyrnk/tablepoll/internal/config"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "tablectl",
	Short: "Manage the poll table",
	Long: `tablectl prepares the poll table for the configured backend and
checks vote counters against the vote audit log.

Settings are read from flags, then from environment variables (TABLE_BACKEND,
TABLE_NAME, DYNAMODB_ENDPOINT, POSTGRES_HOST, ...) and .env files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Init(v)
		return config.SetupLogger(v.GetString("log_level"))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("table-backend", "", "table backend (dynamodb, postgres, memory)")
	flags.String("table-name", "", "DynamoDB table name")
	flags.String("dynamodb-endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	for _, name := range []string{"table-backend", "table-name", "dynamodb-endpoint", "log-level"} {
		key := flagKey(name)
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(createTableCmd, migrateCmd, reconcileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
