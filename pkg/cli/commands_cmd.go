package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandEntry describes one runnable command in the tree.
type CommandEntry struct {
	Path    string      `json:"path"`
	Group   string      `json:"group"`
	Short   string      `json:"short"`
	Long    string      `json:"long,omitempty"`
	Example string      `json:"example,omitempty"`
	Args    string      `json:"args,omitempty"`
	Flags   []FlagEntry `json:"flags,omitempty"`
}

// FlagEntry describes a local flag of a command.
type FlagEntry struct {
	Name     string `json:"name"`
	Short    string `json:"shorthand,omitempty"`
	Type     string `json:"type"`
	Default  string `json:"default,omitempty"`
	Usage    string `json:"usage,omitempty"`
	Required bool   `json:"required,omitempty"`
}

func newCommandsCmd() *cobra.Command {
	var filter, group string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List all available CLI commands with their flags and descriptions",
		Long: `Lists every runnable command with its path, arguments and flags.
Reads no settings and opens no connection.`,
		Example: `  crud commands
  crud commands --filter "table"
  crud commands --group table --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			needle := strings.ToLower(filter)
			entries := slices.DeleteFunc(collectCommands(cmd.Root()), func(e CommandEntry) bool {
				if group != "" && e.Group != group {
					return true
				}
				return needle != "" && !strings.Contains(strings.ToLower(e.Path+" "+e.Short+" "+e.Long), needle)
			})

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.Short})
			}
			PrintTable(cmd.OutOrStdout(), []string{"path", "description"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring matched against path and descriptions")
	cmd.Flags().StringVar(&group, "group", "", "Only commands under this top-level name (e.g. table)")
	return cmd
}

// collectCommands returns the leaf commands below root in tree order.
// Group commands such as "table" are not listed themselves.
func collectCommands(root *cobra.Command) []CommandEntry {
	var out []CommandEntry
	var walk func(c *cobra.Command, path []string)
	walk = func(c *cobra.Command, path []string) {
		for _, child := range c.Commands() {
			if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
				continue
			}
			p := append(slices.Clone(path), child.Name())
			if child.HasSubCommands() {
				walk(child, p)
				continue
			}
			_, args, _ := strings.Cut(child.Use, " ")
			out = append(out, CommandEntry{
				Path:    strings.Join(p, " "),
				Group:   p[0],
				Short:   child.Short,
				Long:    child.Long,
				Example: child.Example,
				Args:    strings.TrimSpace(args),
				Flags:   localFlags(child),
			})
		}
	}
	walk(root, nil)
	return out
}

func localFlags(c *cobra.Command) []FlagEntry {
	var flags []FlagEntry
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		req := f.Annotations[cobra.BashCompOneRequiredFlag]
		flags = append(flags, FlagEntry{
			Name:     f.Name,
			Short:    f.Shorthand,
			Type:     f.Value.Type(),
			Default:  f.DefValue,
			Usage:    f.Usage,
			Required: len(req) > 0 && req[0] == "true",
		})
	})
	return flags
}
