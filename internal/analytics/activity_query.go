package analytics

import (
	"sort"
	"strings"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortTimestamp    = "timestamp"
	SortStore        = "store"
	SortChannel      = "channel"
	SortStatus       = "status"
	SortRevenueDelta = "revenue_delta"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPageSize = 10
)

// ErrorTypeInvalidSort tags rejected sort keys in the audit trail.
const ErrorTypeInvalidSort = "invalid_sort"

var (
	sortKeys  = map[string]bool{SortTimestamp: true, SortStore: true, SortChannel: true, SortStatus: true, SortRevenueDelta: true}
	pageSizes = map[int]bool{10: true, 20: true, 50: true}
)

// NormalizeActivityQuery applies paging defaults and rejects unknown sort keys.
func NormalizeActivityQuery(q types.ActivityQuery) (types.ActivityQuery, error) {
	q.SortBy = strings.TrimSpace(q.SortBy)
	if q.SortBy == "" {
		q.SortBy = SortTimestamp
	}
	if !sortKeys[q.SortBy] {
		return q, pkgerrors.New(pkgerrors.CodeValidation, "Invalid sortBy parameter.").
			WithDetails(map[string]any{"error_type": ErrorTypeInvalidSort, "sortBy": q.SortBy})
	}
	if q.SortDir != SortAsc {
		q.SortDir = SortDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if !pageSizes[q.PageSize] {
		q.PageSize = DefaultPageSize
	}
	return q, nil
}

// SortActivity returns a sorted copy. Text columns use locale collation and
// ties keep their input order.
func SortActivity(rows []types.ActivityEvent, key, dir string) []types.ActivityEvent {
	out := make([]types.ActivityEvent, len(rows))
	copy(out, rows)

	sign := 1
	if dir == SortDesc {
		sign = -1
	}
	col := collate.New(language.English)
	text := func(a, b string) int { return col.CompareString(a, b) }

	var cmp func(a, b types.ActivityEvent) int
	switch key {
	case SortRevenueDelta:
		cmp = func(a, b types.ActivityEvent) int { return compareFloat(a.RevenueDelta, b.RevenueDelta) }
	case SortStore:
		cmp = func(a, b types.ActivityEvent) int { return text(a.Store, b.Store) }
	case SortChannel:
		cmp = func(a, b types.ActivityEvent) int { return text(a.Channel, b.Channel) }
	case SortStatus:
		cmp = func(a, b types.ActivityEvent) int { return text(string(a.Status), string(b.Status)) }
	default:
		cmp = func(a, b types.ActivityEvent) int {
			// Rows without a timestamp sort last in both directions.
			switch {
			case a.Timestamp.IsZero() && b.Timestamp.IsZero():
				return 0
			case a.Timestamp.IsZero():
				return 2 * sign
			case b.Timestamp.IsZero():
				return -2 * sign
			}
			return a.Timestamp.Compare(b.Timestamp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j])*sign < 0
	})
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
