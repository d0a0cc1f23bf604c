// Package cli implements the crud command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lake-crud/internal/config"
	"lake-crud/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = PrintJSON(os.Stdout, errorObject(err))
		} else {
			printDiagnostic(os.Stdout, err)
		}
		return 1
	}
	return 0
}

// printDiagnostic writes the human-readable error. Store failures are
// followed by a trace of the failing operation and its cause chain.
func printDiagnostic(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		return
	}
	fmt.Fprintln(w, "Trace:")
	fmt.Fprintf(w, "  operation: %s\n", storeErr.Op)
	if storeErr.Table != "" {
		fmt.Fprintf(w, "  table: %s\n", storeErr.Table)
	}
	for cause := storeErr.Err; cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "  cause: %v\n", cause)
	}
}

// errorObject describes err for json output.
func errorObject(err error) map[string]any {
	errObj := map[string]any{
		"error": err.Error(),
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		errObj["config_key"] = cfgErr.Key
	}
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		errObj["operation"] = storeErr.Op
	}
	return errObj
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "crud",
		Short: "CRUD client for a lakehouse product table",
		Long: `Runs create, read, update and delete operations against a single
product table on a Databricks SQL warehouse, through ODBC, or on an embedded
DuckDB database. Without a subcommand the full demo sequence runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutputFormat(opts.output)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, opts, false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory holding settings.yaml and .env")
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "", "Settings override to load (default $APP_ENV, then development)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVar(&opts.pooled, "pooled", false, "Share one connection pool across operations")

	rootCmd.AddCommand(newDemoCmd(opts))
	rootCmd.AddCommand(newSchemasCmd(opts))
	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newCreateCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newTableCmd(opts))
	rootCmd.AddCommand(newLakeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCommandsCmd())

	return rootCmd
}
