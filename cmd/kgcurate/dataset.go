package kgcurate

import (
	"github.com/spf13/cobra"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset <triplets.ttl>",
	Short: "Build train, valid and test splits from a triplet file",
	Long: `Build a link prediction dataset from a triplet file.

Relations are canonicalized, optionally filtered and relabeled, the graph is optionally
restricted to the neighbourhood of seed entities, and the triplets are split so that no
(head, tail) pair linked by several relations appears in valid or test. Valid and test
are then pruned to triplets close to each other in the training graph.

Outputs are written next to the input: <stem>_train.ttl, <stem>_valid.ttl, <stem>_test.ttl,
<stem>_clean.ttl when relations are filtered, <stem>_sub.ttl when seeds are given, and
<stem>_manifest.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: runDataset,
}

func init() {
	rootCmd.AddCommand(datasetCmd)

	flags := datasetCmd.Flags()
	flags.Float64("split", 0.01, "fraction of triplets for valid and for test, in [0, 1)")
	flags.Int("dist", 3, "subgraph radius in hops around the seeds")
	flags.Int("prune-dist", 0, "largest head-tail distance kept in valid and test (0 means --dist)")
	flags.Float64("ratio-off", 0.1, "share of valid and test kept beyond --prune-dist, in [0, 1)")
	flags.StringSlice("allow", nil, "relation glob patterns to keep")
	flags.StringSlice("deny", nil, "relation glob patterns to drop")
	flags.StringSlice("seed", nil, "seed entities of the subgraph")
	flags.String("seeds-file", "", "file with one seed entity per line")
	flags.Bool("relabel", true, "rewrite camelCase relations as snake_case")
	flags.Bool("lowercase", true, "lowercase relabeled relations")
	flags.Bool("negatives", false, "also generate negatives for the new dataset")

	bindFlags(datasetCmd, map[string]string{
		"dataset.split":           "split",
		"dataset.dist":            "dist",
		"dataset.prune_dist":      "prune-dist",
		"dataset.ratio_off":       "ratio-off",
		"dataset.allow_relations": "allow",
		"dataset.deny_relations":  "deny",
		"dataset.seeds":           "seed",
		"dataset.seeds_file":      "seeds-file",
		"dataset.relabel":         "relabel",
		"dataset.lowercase":       "lowercase",
	}, false)
}

func runDataset(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()

	ds, err := s.curator.MakeDataset(ctx, args[0])
	if err != nil {
		s.logger.Error("Dataset build failed", "path", args[0], "error", err)
		return err
	}
	cmd.Println(ds)

	if withNegatives, _ := cmd.Flags().GetBool("negatives"); withNegatives {
		return generate(cmd, s, datasetPrefix(args[0]))
	}
	return nil
}
