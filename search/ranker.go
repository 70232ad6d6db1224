package search

import (
	"fmt"

	"github.com/poiesic/quaero/core"
)

// Ranker filters a score-ordered hit list with a two-tier gap rule.
//
// When the top score reaches Dominance and leads the runner-up by more
// than Gap, hits scoring below Cutoff are dropped. Otherwise every hit is
// kept. The result is never empty for a non-empty input.
type Ranker struct {
	Dominance float32
	Gap       float32
	Cutoff    float32
}

// DefaultRankerConfig returns the tuned thresholds used in production.
func DefaultRankerConfig() Ranker {
	return Ranker{Dominance: 0.50, Gap: 0.08, Cutoff: 0.45}
}

// ConservativeRankerConfig returns a stricter trigger that filters less often.
func ConservativeRankerConfig() Ranker {
	return Ranker{Dominance: 0.65, Gap: 0.15, Cutoff: 0.40}
}

// Validate checks that every threshold lies in [0, 1].
func (r Ranker) Validate() error {
	for name, v := range map[string]float32{"dominance": r.Dominance, "gap": r.Gap, "cutoff": r.Cutoff} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s is %.3f", ErrInvalidThreshold, name, v)
		}
	}
	return nil
}

// Decision describes what the ranker did with one hit list.
type Decision struct {
	Top       float32
	Second    float32
	Gap       float32
	Triggered bool // Dominance and gap conditions both held
	Kept      int
	Dropped   int
}

// Rank applies gap filtering to hits, which must be sorted by descending
// score. Input order is preserved and hits is not modified.
func (r Ranker) Rank(hits []*core.SearchHit) []*core.SearchHit {
	ranked, _ := r.Explain(hits)
	return ranked
}

// Explain is Rank plus a description of the decision taken.
func (r Ranker) Explain(hits []*core.SearchHit) ([]*core.SearchHit, Decision) {
	if len(hits) < 2 {
		d := Decision{Kept: len(hits)}
		if len(hits) == 1 {
			d.Top = hits[0].Score
		}
		return hits, d
	}

	d := Decision{Top: hits[0].Score, Second: hits[1].Score}
	d.Gap = d.Top - d.Second
	if d.Top < r.Dominance || d.Gap <= r.Gap {
		d.Kept = len(hits)
		return hits, d
	}

	d.Triggered = true
	kept := make([]*core.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= r.Cutoff {
			kept = append(kept, hit)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, hits[0])
	}
	d.Kept = len(kept)
	d.Dropped = len(hits) - len(kept)
	return kept, d
}
