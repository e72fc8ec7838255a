package cytometry

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
)

const (
	defaultSearchLimit = 20
	inChunkSize        = 500
	createBatchSize    = 500
)

// applyPredicates ANDs equality predicates onto q.
func applyPredicates(q *gorm.DB, preds []types.Predicate) *gorm.DB {
	for _, p := range preds {
		q = q.Where(clause.Eq{Column: clause.Column{Name: p.Column}, Value: p.Value})
	}
	return q
}

// likeContains builds a case-insensitive substring pattern usable on both
// PostgreSQL and SQLite.
func likeContains(q string) string {
	return "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
}

func likePrefix(q string) string {
	return escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func searchLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return defaultSearchLimit
	}
	return limit
}

func chunkIDs(ids []uint, size int) [][]uint {
	if size <= 0 {
		size = inChunkSize
	}
	var out [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
