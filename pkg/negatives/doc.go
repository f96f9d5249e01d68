// Package negatives generates negative examples for link prediction.
//
// For a positive triplet (h, r, t) a Sampler returns entities that are observed tails of r
// but not direct neighbours of h, preferring ones close to h in the training graph. The
// closeness comes from bounded random walks that may follow edges in either direction;
// DepthAmount decides how many walks run at each depth.
package negatives
