// exprc compiles condition specifications into DynamoDB expressions.
//
// # Commands
//
//	exprc compile filter <spec.yaml>      FilterExpression from a specification
//	exprc compile condition <spec.yaml>   ConditionExpression from a specification
//	exprc compile key <spec.yaml>         KeyConditionExpression on a single key attribute
//	exprc compile update <item.yaml>      UpdateExpression setting every attribute of item
//	exprc compile unique                  guard that fails if the primary key already exists
//	exprc query <partition>               run a query against a live table
//
// Pass "-" instead of a file to read standard input.
//
// Settings are read from typedorm.yaml, searched for from the current directory
// up to the filesystem root.
//
// Logging:
//   - Base logger is created here and passed to the SDK client
//   - No global slog configuration
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/time-loop/typedorm/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "exprc",
		Short:        "Compile condition specifications into DynamoDB expressions",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default: nearest "+configFileName+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default from config, else warn)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}

	rootCmd.AddCommand(newCompileCmd(), newQueryCmd(), versionCmd)
	return rootCmd
}

// loggerFromCmd builds the base logger. Logs go to stderr so JSON output stays clean.
func loggerFromCmd(cmd *cobra.Command, cfg Config) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	lvl := slog.LevelWarn
	if level != "" {
		lvl = logging.ParseLevel(level)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}
