package canonical

import (
	"regexp"
	"strings"

	"github.com/soundprediction/kgcurate/pkg/types"
)

var camelWord = regexp.MustCompile(`[A-Z]?[^A-Z]+`)

// SnakeCase splits a camel-case label into "_"-joined words: "hqLocationCity" becomes
// "hq_Location_City", or "hq_location_city" when lower is set. A label without any
// lowercase run ("URL") is returned unchanged.
func SnakeCase(rel string, lower bool) string {
	words := camelWord.FindAllString(rel, -1)
	if len(words) == 0 {
		return rel
	}
	out := strings.Join(words, "_")
	if lower {
		out = strings.ToLower(out)
	}
	return out
}

// Relabel rewrites every relation with SnakeCase.
func Relabel(ts []types.Triplet, lower bool) []types.Triplet {
	cache := make(map[string]string)
	out := make([]types.Triplet, len(ts))
	for i, t := range ts {
		rel, ok := cache[t.Relation]
		if !ok {
			rel = SnakeCase(t.Relation, lower)
			cache[t.Relation] = rel
		}
		t.Relation = rel
		out[i] = t
	}
	return out
}
