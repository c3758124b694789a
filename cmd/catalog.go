package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/landsuit/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the dataset catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued datasets and their source paths",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := initCatalog()
		if err != nil {
			return err
		}
		formatCatalog(cmd.OutOrStdout(), cat)
		return nil
	},
}

var catalogResolveCmd = &cobra.Command{
	Use:   "resolve <dataset-id>...",
	Short: "Print the source path each dataset identifier resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := initCatalog()
		if err != nil {
			return err
		}
		for _, id := range args {
			p, err := cat.Resolve(id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, p)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogResolveCmd)
	rootCmd.AddCommand(catalogCmd)
}

// formatCatalog writes the catalog entries as a table.
func formatCatalog(out io.Writer, cat *catalog.Catalog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Base path:\t%s\n", cat.BasePath)
	if cat.Strict {
		_, _ = fmt.Fprintln(w, "Mode:\tstrict")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tUNITS\tPATH\tDESCRIPTION")
	for _, id := range cat.IDs() {
		e := cat.Datasets[id]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, e.Type, e.Units, e.Path, e.Description)
	}
	_ = w.Flush()
}
