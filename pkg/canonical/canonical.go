package canonical

import (
	"strings"

	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/soundprediction/kgcurate/pkg/utils"
)

// singular returns the singular key of a lowercase relation: "ies" becomes "y",
// otherwise a trailing "s" is dropped. ok is false when the key has no plural ending.
func singular(key string) (sg string, ok bool) {
	if strings.HasSuffix(key, "ies") {
		return key[:len(key)-3] + "y", true
	}
	if strings.HasSuffix(key, "s") {
		return key[:len(key)-1], true
	}
	return "", false
}

// RelationMap computes the remap table that sends every non-canonical relation label to
// the canonical member of its equivalence class.
//
// Labels are equivalent when their lowercase forms match, or when one lowercase form is
// the plural of another present one. The canonical member is the label with the highest
// count; ties go to the lexicographically smallest label. Canonical labels are absent
// from the table.
func RelationMap(counts map[string]int) map[string]string {
	surface := make(map[string][]string)
	for rel := range counts {
		key := strings.ToLower(rel)
		surface[key] = append(surface[key], rel)
	}

	keys := make([]string, 0, len(surface))
	for key := range surface {
		keys = append(keys, key)
	}
	uf := utils.NewUnionFind(keys)
	for _, key := range keys {
		// an "ies" key only ever merges into its "y" form
		if sg, ok := singular(key); ok {
			if _, present := surface[sg]; present {
				uf.Union(key, sg)
			}
		}
	}

	remap := make(map[string]string)
	for _, members := range uf.Groups() {
		var rels []string
		for _, key := range members {
			rels = append(rels, surface[key]...)
		}
		if len(rels) < 2 {
			continue
		}
		best := rels[0]
		for _, rel := range rels[1:] {
			if counts[rel] > counts[best] || (counts[rel] == counts[best] && rel < best) {
				best = rel
			}
		}
		for _, rel := range rels {
			if rel != best {
				remap[rel] = best
			}
		}
	}
	return remap
}

// Apply rewrites every triplet's relation through remap; unmapped relations pass through.
func Apply(ts []types.Triplet, remap map[string]string) []types.Triplet {
	out := make([]types.Triplet, len(ts))
	for i, t := range ts {
		if canon, ok := remap[t.Relation]; ok {
			t.Relation = canon
		}
		out[i] = t
	}
	return out
}

// Canonicalize collapses case and plural variants of relation labels to one canonical form.
func Canonicalize(ts []types.Triplet) []types.Triplet {
	return Apply(ts, RelationMap(triplets.CountRelations(ts)))
}
