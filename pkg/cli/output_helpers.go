package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lake-crud/internal/domain"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes rows under upper-cased column headers, separated by two
// spaces. Nothing is written when there are no columns.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// productJSON is the wire form of a product. Price keeps two decimals.
type productJSON struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

func toProductJSON(p domain.Product) productJSON {
	return productJSON{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Quantity: p.Quantity}
}

// printProducts renders products in the selected output format.
func printProducts(cmd *cobra.Command, products []domain.Product) error {
	out := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		items := make([]productJSON, 0, len(products))
		for _, p := range products {
			items = append(items, toProductJSON(p))
		}
		return PrintJSON(out, items)
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			fmt.Sprint(p.ID), p.Name, p.Price.StringFixed(2), fmt.Sprint(p.Quantity),
		})
	}
	PrintTable(out, []string{"id", "name", "price", "quantity"}, rows)
	return nil
}

// printResult renders a single-line confirmation, or an object in json mode.
func printResult(cmd *cobra.Command, obj map[string]any, format string, args ...any) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(cmd.OutOrStdout(), obj)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return err
}
