package pipeline

import (
	"strings"

	"github.com/amishk599/avradar/internal/model"
)

const (
	titleKeyRunes   = 40
	companyKeyRunes = 30
)

// DedupKey identifies a posting across sources: the lower-cased title and
// company cut to fixed prefixes. Distinct postings sharing long prefixes
// collide; that is accepted.
type DedupKey struct {
	Title   string
	Company string
}

// KeyOf returns the dedup key of a job.
func KeyOf(job model.Job) DedupKey {
	return DedupKey{
		Title:   prefix(strings.ToLower(job.Title), titleKeyRunes),
		Company: prefix(strings.ToLower(job.Company), companyKeyRunes),
	}
}

// Deduplicate keeps the first job seen for each key and drops the rest.
// The result is a new slice preserving input order.
func Deduplicate(jobs []model.Job) []model.Job {
	seen := make(map[DedupKey]struct{}, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		k := KeyOf(j)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, j)
	}
	return out
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
