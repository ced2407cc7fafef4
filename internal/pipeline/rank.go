package pipeline

import (
	"cmp"
	"slices"

	"github.com/amishk599/avradar/internal/model"
)

// DefaultMaxResults caps the number of jobs a fetch cycle returns.
const DefaultMaxResults = 40

// RankAndTruncate sorts a copy of jobs by score descending, keeping arrival
// order among equal scores, and returns at most limit of them.
// A non-positive limit means DefaultMaxResults.
func RankAndTruncate(jobs []model.Job, limit int) []model.Job {
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	ranked := slices.Clone(jobs)
	if ranked == nil {
		ranked = []model.Job{}
	}
	slices.SortStableFunc(ranked, func(a, b model.Job) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// dropNonPositive returns the jobs whose score is above zero.
func dropNonPositive(jobs []model.Job) []model.Job {
	return slices.DeleteFunc(slices.Clone(jobs), func(j model.Job) bool {
		return j.Score <= 0
	})
}
