// Package triplets holds the in-memory triplet collection and its derived indices,
// plus the line-oriented file codec.
//
// A Store is built once from a triplet slice. It owns an EntityIndex (entity <-> dense
// int32 ID) and relation counts; adjacency lists and the relation -> tail index are built
// on demand and are read-only afterwards, so they can be shared across workers.
//
// Files are read and written one "head relation tail" line at a time. Paths ending in
// .gz or .zst are transparently (de)compressed. Reading fails on the first malformed
// line, since a silently dropped line would break the positional alignment between
// split files and their negative files.
package triplets
