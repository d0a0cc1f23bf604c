package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lake-crud/internal/app"
	"lake-crud/internal/domain"
)

// productFlags are the column flags shared by create and update.
type productFlags struct {
	id       int
	name     string
	price    string
	quantity int
}

func (f *productFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.id, "id", 0, "Product id")
	fs.StringVar(&f.name, "name", "", "Product name")
	fs.StringVar(&f.price, "price", "", "Unit price, at most two decimals and below 100000000 (e.g. 999.99)")
	fs.IntVar(&f.quantity, "quantity", 0, "Units in stock")
}

func (f *productFlags) markRequired(cmd *cobra.Command) {
	for _, name := range []string{"id", "name", "price", "quantity"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *productFlags) product() (domain.Product, error) {
	price, err := domain.ParsePrice(f.price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: f.id, Name: f.name, Price: price, Quantity: f.quantity}, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.ErrValidation("invalid id %q: must be an integer", s)
	}
	return id, nil
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the product with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.App) error {
				p, found, err := a.Products.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("product %d not found", id)
				}
				return printProducts(cmd, []domain.Product{p})
			})
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				products, err := a.Products.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				return printProducts(cmd, products)
			})
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Insert a product",
		Example: `  crud create --id 1 --name Laptop --price 999.99 --quantity 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.product()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.Products.Create(cmd.Context(), p); err != nil {
					return err
				}
				return printResult(cmd, map[string]any{"created": toProductJSON(p)},
					"Product created: %s", p.Name)
			})
		},
	}
	f.register(cmd.Flags())
	f.markRequired(cmd)
	return cmd
}

func newUpdateCmd(opts *options) *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Replace name, price and quantity of the product with --id",
		Example: `  crud update --id 1 --name Laptop --price 899.99 --quantity 15`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.product()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.App) error {
				n, err := a.Products.Update(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printResult(cmd, map[string]any{"id": p.ID, "rows_affected": n},
					"Product updated: %s (rows affected: %d)", p.Name, n)
			})
		},
	}
	f.register(cmd.Flags())
	f.markRequired(cmd)
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete the product with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.App) error {
				n, err := a.Products.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printResult(cmd, map[string]any{"id": id, "rows_affected": n},
					"Product deleted: ID %d (rows affected: %d)", id, n)
			})
		},
	}
}
