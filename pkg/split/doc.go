// Package split partitions a curated triplet set into train, validation and test.
//
// Split enforces the leakage rule: a (head, tail) pair seen more than once never reaches
// validation or test, so a model cannot answer an evaluation triplet by reading a sibling
// relation of the same pair in training. Prune then trims an evaluation split by the
// head-tail distance in the training graph, keeping a controlled share of distant or
// disconnected ("off-distribution") triplets.
package split
