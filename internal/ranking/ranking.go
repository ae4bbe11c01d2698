package ranking

import (
	"math"
	"sort"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

// Score is the merge heuristic for combined search results:
// popularity weighted by the rating normalised to [0, 1].
func Score(r domain.Record) float64 {
	return finite(r.Popularity) * (finite(r.VoteAverage) / 10)
}

// Rank sorts records by Score descending. Equal scores keep their input order.
func Rank(records []domain.Record) []domain.Record {
	sort.SliceStable(records, func(i, j int) bool {
		return Score(records[i]) > Score(records[j])
	})
	return records
}

// Featured picks the record with the highest rating. The first one wins a tie.
func Featured(records []domain.Record) *domain.Record {
	if len(records) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(records); i++ {
		if finite(records[i].VoteAverage) > finite(records[best].VoteAverage) {
			best = i
		}
	}
	featured := records[best]
	return &featured
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
