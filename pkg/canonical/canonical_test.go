package canonical

import (
	"testing"

	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRelations(counts map[string]int) []types.Triplet {
	var ts []types.Triplet
	i := 0
	for rel, n := range counts {
		for j := 0; j < n; j++ {
			ts = append(ts, types.Triplet{Head: "h", Relation: rel, Tail: string(rune('a' + i%26))})
			i++
		}
	}
	return ts
}

func TestRelationMap(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   map[string]string
	}{
		{
			name:   "case and plural variants merge into the most frequent",
			counts: map[string]int{"worksAt": 3, "WorksAt": 1, "worksAts": 1},
			want:   map[string]string{"WorksAt": "worksAt", "worksAts": "worksAt"},
		},
		{
			name:   "ies plural merges into y singular",
			counts: map[string]int{"cities": 5, "city": 2, "City": 1},
			want:   map[string]string{"city": "cities", "City": "cities"},
		},
		{
			name:   "ies plural does not fall back to dropping s",
			counts: map[string]int{"movies": 2, "movie": 3},
			want:   map[string]string{},
		},
		{
			name:   "plural without a present singular is left alone",
			counts: map[string]int{"awards": 4, "Awards": 1},
			want:   map[string]string{"Awards": "awards"},
		},
		{
			name:   "chains collapse fully",
			counts: map[string]int{"a": 1, "as": 2, "ass": 3},
			want:   map[string]string{"a": "ass", "as": "ass"},
		},
		{
			name:   "ties go to the smallest label",
			counts: map[string]int{"Spouse": 2, "spouse": 2},
			want:   map[string]string{"spouse": "Spouse"},
		},
		{
			name:   "singletons are not remapped",
			counts: map[string]int{"birthPlace": 7, "deathPlace": 2},
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelationMap(tt.counts))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	t.Run("worksAt scenario", func(t *testing.T) {
		ts := withRelations(map[string]int{"worksAt": 3, "WorksAt": 1, "worksAts": 1})
		out := Canonicalize(ts)
		require.Len(t, out, 5)
		for i, tr := range out {
			assert.Equal(t, "worksAt", tr.Relation)
			assert.Equal(t, ts[i].Head, tr.Head)
			assert.Equal(t, ts[i].Tail, tr.Tail)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		ts := withRelations(map[string]int{
			"a": 1, "as": 2, "ass": 3, "Cities": 2, "city": 2, "knownFor": 1, "KnownFor": 1,
			"parents": 4, "parent": 1, "Parent": 1, "movies": 1, "movie": 1,
		})
		once := Canonicalize(ts)
		twice := Canonicalize(once)
		assert.Equal(t, once, twice)
	})

	t.Run("input is not modified", func(t *testing.T) {
		ts := []types.Triplet{{Head: "A", Relation: "Likes", Tail: "B"}, {Head: "A", Relation: "likes", Tail: "C"}, {Head: "B", Relation: "likes", Tail: "C"}}
		_ = Canonicalize(ts)
		assert.Equal(t, "Likes", ts[0].Relation)
	})
}

func TestFilter(t *testing.T) {
	ts := []types.Triplet{
		{Head: "A", Relation: "birthPlace", Tail: "B"},
		{Head: "A", Relation: "/people/person/nationality", Tail: "C"},
		{Head: "A", Relation: "/film/film/genre", Tail: "D"},
		{Head: "A", Relation: "label", Tail: "E"},
	}

	t.Run("empty filter keeps everything", func(t *testing.T) {
		f, err := NewRelationFilter(nil, nil)
		require.NoError(t, err)
		assert.True(t, f.Empty())
		assert.Equal(t, ts, Filter(ts, f))
		assert.Equal(t, ts, Filter(ts, nil))
	})

	t.Run("allow list with globs", func(t *testing.T) {
		f, err := NewRelationFilter([]string{"birthPlace", "/people/**"}, nil)
		require.NoError(t, err)
		out := Filter(ts, f)
		require.Len(t, out, 2)
		assert.Equal(t, "birthPlace", out[0].Relation)
		assert.Equal(t, "/people/person/nationality", out[1].Relation)
	})

	t.Run("deny list", func(t *testing.T) {
		f, err := NewRelationFilter(nil, []string{"label", "/film/**"})
		require.NoError(t, err)
		out := Filter(ts, f)
		require.Len(t, out, 2)
		assert.Equal(t, "birthPlace", out[0].Relation)
	})

	t.Run("deny wins over allow", func(t *testing.T) {
		f, err := NewRelationFilter([]string{"/**"}, []string{"/film/**"})
		require.NoError(t, err)
		assert.True(t, f.Keep("/people/person/nationality"))
		assert.False(t, f.Keep("/film/film/genre"))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewRelationFilter([]string{"[a-"}, nil)
		assert.Error(t, err)
	})
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in    string
		lower bool
		want  string
	}{
		{"hqLocationCity", false, "hq_Location_City"},
		{"hqLocationCity", true, "hq_location_city"},
		{"birthplace", true, "birthplace"},
		{"BirthPlace", true, "birth_place"},
		{"URL", true, "URL"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SnakeCase(tt.in, tt.lower))
		})
	}

	out := Relabel([]types.Triplet{{Head: "A", Relation: "knownFor", Tail: "B"}}, true)
	assert.Equal(t, "known_for", out[0].Relation)
}
