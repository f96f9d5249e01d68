package kgcurate

import (
	"context"

	"github.com/soundprediction/kgcurate/pkg/canonical"
	"github.com/soundprediction/kgcurate/pkg/triplets"
)

// RelationRow is one line of a relation frequency report.
type RelationRow struct {
	Relation string  `json:"relation" yaml:"relation"`
	Short    string  `json:"short" yaml:"short"`
	Count    int     `json:"count" yaml:"count"`
	Share    float64 `json:"share" yaml:"share"`
}

// RelationReport returns the top most frequent relations of the triplet file at path after
// canonicalization, with shortened display labels. A non-positive top returns every relation.
func (c *Curator) RelationReport(ctx context.Context, path string, top int) ([]RelationRow, error) {
	ts, err := triplets.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store := triplets.NewStore(canonical.Canonicalize(ts))
	counts := store.TopRelations(top)
	rows := make([]RelationRow, len(counts))
	for i, rc := range counts {
		rows[i] = RelationRow{
			Relation: rc.Relation,
			Short:    c.labels.Shorten(rc.Relation),
			Count:    rc.Count,
			Share:    float64(rc.Count) / float64(store.Len()),
		}
	}
	return rows, nil
}
