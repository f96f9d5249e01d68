package kgcurate

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var relationsCmd = &cobra.Command{
	Use:   "relations <triplets.ttl>",
	Short: "Show the most frequent relations after canonicalization",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelations,
}

var (
	relationsTop    int
	relationsFormat string
)

func init() {
	rootCmd.AddCommand(relationsCmd)

	relationsCmd.Flags().IntVar(&relationsTop, "top", 20, "number of relations to show (0 shows all)")
	relationsCmd.Flags().StringVar(&relationsFormat, "format", "table", "output format (table, yaml, json)")
}

func runRelations(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()

	rows, err := s.curator.RelationReport(ctx, args[0], relationsTop)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch relationsFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(rows)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RELATION\tCOUNT\tSHARE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", r.Short, r.Count, r.Share*100)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", relationsFormat)
	}
}
