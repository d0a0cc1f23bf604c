package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lake-crud/internal/app"
)

func newDemoCmd(opts *options) *cobra.Command {
	var pause bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full create, read, update and delete sequence",
		Long: `Lists the catalog's schemas, recreates the product table, inserts two
products, updates one, deletes the other, and prints the table after each
change. Schema listing failures are reported and skipped; any other failure
stops the run.`,
		Example: `  # Run against the configured warehouse
  crud demo

  # Run against the staging settings and wait for a key before exiting
  crud --env staging demo --pause`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, opts, pause)
		},
	}

	cmd.Flags().BoolVar(&pause, "pause", false, "Wait for a key press before exiting (terminal only)")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *options, pause bool) error {
	err := opts.withApp(cmd, func(a *app.App) error {
		return app.RunDemo(cmd.Context(), a.Products, a.Settings.Connection.Catalog, cmd.OutOrStdout())
	})
	if pause {
		waitForKey(os.Stdin, cmd.OutOrStdout())
	}
	return err
}

// waitForKey blocks until one key is pressed when in is a terminal. It does
// nothing otherwise, so scripted runs never hang.
func waitForKey(in *os.File, out io.Writer) {
	fd := int(in.Fd()) //nolint:gosec // fd fits in int
	if !term.IsTerminal(fd) {
		return
	}
	_, _ = fmt.Fprintln(out, "\nPress any key to exit...")

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, state) //nolint:errcheck

	buf := make([]byte, 1)
	if _, err := in.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return
	}
}
