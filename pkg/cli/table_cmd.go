package cli

import (
	"github.com/spf13/cobra"

	"lake-crud/internal/app"
)

func newTableCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage the product table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create the product table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.Products.EnsureTable(cmd.Context()); err != nil {
					return err
				}
				return printResult(cmd, map[string]any{"table": a.Products.Table(), "ensured": true},
					"Table '%s' created or already exists.", a.Products.Table())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop",
		Short: "Drop the product table if it exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.Products.DropTable(cmd.Context()); err != nil {
					return err
				}
				return printResult(cmd, map[string]any{"table": a.Products.Table(), "dropped": true},
					"Table '%s' dropped if it existed.", a.Products.Table())
			})
		},
	})

	return cmd
}

func newSchemasCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas [catalog]",
		Short: "List the schemas of a catalog (default: the configured catalog)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				catalog := a.Settings.Connection.Catalog
				if len(args) == 1 {
					catalog = args[0]
				}
				var names []string
				for name, err := range a.Products.ListSchemas(cmd.Context(), catalog) {
					if err != nil {
						return err
					}
					names = append(names, name)
				}
				if getOutputFormat(cmd) == "json" {
					return PrintJSON(cmd.OutOrStdout(), map[string]any{"catalog": catalog, "schemas": names})
				}
				rows := make([][]string, 0, len(names))
				for _, n := range names {
					rows = append(rows, []string{n})
				}
				PrintTable(cmd.OutOrStdout(), []string{"schema"}, rows)
				return nil
			})
		},
	}
}
