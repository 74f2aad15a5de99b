package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chronolog/internal/config"
)

var (
	settings = config.New()

	rootCmd = &cobra.Command{
		Use:   "chronolog",
		Short: "Activity log with suggestions, habit streaks and weekly insights",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env 不存在时忽略
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("database", "", "path to the SQLite database")
	flags.String("timezone", "", "IANA timezone used for calendar days")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: json or console")
	flags.String("categories", "", "YAML file overriding the built-in category table")

	mustBind(config.KeyDatabasePath, flags.Lookup("database"))
	mustBind(config.KeyTimezone, flags.Lookup("timezone"))
	mustBind(config.KeyLogLevel, flags.Lookup("log-level"))
	mustBind(config.KeyLogFormat, flags.Lookup("log-format"))
	mustBind(config.KeyCategoriesFile, flags.Lookup("categories"))

	rootCmd.AddCommand(serveCmd(), importCmd(), exportCmd(), classifyCmd(), insightsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
