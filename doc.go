// Package kgcurate builds link prediction datasets from knowledge graph triplet files.
//
// A triplet file holds one "head relation tail" fact per line. The Curator cleans the
// relation vocabulary, optionally restricts the graph to the neighbourhood of seed
// entities, splits it into train, validation and test sets without leaking entity pairs
// across splits, and prunes the evaluation sets to triplets whose endpoints are close in
// the training graph. It then generates graph-aware negative examples for every split.
//
// # Basic Usage
//
//	cfg := config.Default()
//	cfg.Dataset.Seeds = []string{"Barack_Obama", "Donald_Trump"}
//
//	curator, err := kgcurate.NewCurator(cfg, logger.NewDefaultLogger(slog.LevelInfo))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// writes data/infobox_en_{sub,train,valid,test}.ttl
//	ds, err := curator.MakeDataset(ctx, "data/infobox_en.ttl")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// writes data/infobox_en_neg_{train,valid,test}.ttl
//	_, err = curator.GenerateNegatives(ctx, kgcurate.Prefix("data/infobox_en.ttl"))
//
// # Pipeline
//
// Relations that differ only in case or by a plural suffix are merged into their most
// frequent spelling. A pair (head, tail) linked by more than one relation always stays in
// the training split, since one fact would give the other away. Validation and test keep
// every triplet within the configured hop distance in the training graph and only a
// bounded share of the rest.
//
// Negatives for (head, relation, tail) are observed tails of the relation that are not
// already linked to head, found by short random walks from head so they are plausible
// but wrong completions.
package kgcurate
