// Package canonical normalizes relation labels before a dataset is split.
//
// Canonicalize merges labels that differ only by case or by a plural ending into the
// most frequent member of their class; running it twice is the same as running it once.
// Filter applies a glob-based allow/deny list and Relabel turns camel-case labels into
// snake case. None of them introduces an entity that was not already in the input.
package canonical
