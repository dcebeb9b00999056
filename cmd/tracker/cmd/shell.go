package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Aliases: []string{"repl"},
	Short:   "Record transactions and view reports from the terminal",
	Long: `Shell starts an interactive session. Type 'help' inside it for the list
of commands. Logs go to stderr at warn level unless --log-level or LOG_LEVEL
says otherwise.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if !cmd.Flags().Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, nil)

	// Interrupts keep their default behaviour so Ctrl-C leaves the session.
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return shell.New(a.tracker, cmd.InOrStdin(), cmd.OutOrStdout(), shell.WithLogger(logger)).Run(ctx)
}
