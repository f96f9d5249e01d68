package kgcurate

import (
	"path/filepath"

	"github.com/soundprediction/kgcurate"
	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/spf13/cobra"
)

var negativesCmd = &cobra.Command{
	Use:   "negatives <prefix>",
	Short: "Generate negative tails for every split of a dataset",
	Long: `Generate negatives for the dataset at <prefix>, reading <prefix>_train.ttl,
<prefix>_valid.ttl and <prefix>_test.ttl and writing <prefix>_neg_train.ttl,
<prefix>_neg_valid.ttl and <prefix>_neg_test.ttl.

Line i of a negatives file holds --n entities for line i of the split: observed tails of
the relation that are not linked to the head, found by random walks of up to --max-depth
hops. A path to the original triplet file is accepted as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runNegatives,
}

func init() {
	rootCmd.AddCommand(negativesCmd)

	flags := negativesCmd.Flags()
	flags.Int("max-depth", 4, "longest random walk in hops (at least 2)")
	flags.Int("n", 5, "negatives per positive")
	flags.Int("walk-budget", 1000, "walk attempts per positive, spread over depths")
	flags.Uint64("seed", 0, "random seed (0 picks one and logs it)")

	bindFlags(negativesCmd, map[string]string{
		"negatives.max_depth":   "max-depth",
		"negatives.n":           "n",
		"negatives.walk_budget": "walk-budget",
		"negatives.seed":        "seed",
	}, false)
}

func runNegatives(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	return generate(cmd, s, datasetPrefix(args[0]))
}

func generate(cmd *cobra.Command, s *session, prefix string) error {
	ctx, cancel := signalContext()
	defer cancel()

	res, err := s.curator.GenerateNegatives(ctx, prefix)
	if err != nil {
		s.logger.Error("Negative sampling failed", "prefix", prefix, "error", err)
		return err
	}
	for _, split := range types.AllSplits {
		cmd.Printf("%s\t%d\n", res.Paths[split], res.Counts[split])
	}
	cmd.Printf("seed\t%d\n", res.Seed)
	return nil
}

// datasetPrefix accepts either a dataset prefix or the triplet file it was built from.
func datasetPrefix(arg string) string {
	if kgcurate.Stem(arg) != filepath.Base(arg) {
		return kgcurate.Prefix(arg)
	}
	return arg
}
