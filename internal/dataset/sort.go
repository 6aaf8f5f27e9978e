package dataset

import (
	"sort"
	"strings"

	"github.com/muurk/budgetgrid/internal/grid"
)

// sortedIDs returns row ids ordered by keys; load order breaks ties
func sortedIDs(rows []Row, keys []grid.SortKey) []string {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	if len(keys) > 0 {
		sort.SliceStable(idx, func(a, b int) bool {
			ra, rb := rows[idx[a]], rows[idx[b]]
			for _, k := range keys {
				c := Compare(ra.Values[k.ColumnID], rb.Values[k.ColumnID])
				if c == 0 {
					continue
				}
				if k.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	ids := make([]string, len(idx))
	for i, j := range idx {
		ids[i] = rows[j].ID
	}
	return ids
}

// Compare orders two cell values. Empty values sort first, then booleans
// (false before true), then numbers, then strings case-insensitively.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case rankEmpty:
		return 0
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankNumber:
		fa, _ := grid.ToFloat(a)
		fb, _ := grid.ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	default:
		sa := strings.ToLower(grid.FormatValue(a))
		sb := strings.ToLower(grid.FormatValue(b))
		return strings.Compare(sa, sb)
	}
}

const (
	rankEmpty = iota
	rankBool
	rankNumber
	rankText
)

func rank(v any) int {
	switch val := v.(type) {
	case nil:
		return rankEmpty
	case string:
		if val == "" {
			return rankEmpty
		}
		return rankText
	case bool:
		return rankBool
	case float64, float32, int, int32, int64, uint, uint64:
		return rankNumber
	default:
		return rankText
	}
}

// NextSort cycles the sort on one column: none, ascending, descending, none
func NextSort(current []grid.SortKey, columnID string) []grid.SortKey {
	if len(current) == 1 && current[0].ColumnID == columnID {
		if !current[0].Descending {
			return []grid.SortKey{{ColumnID: columnID, Descending: true}}
		}
		return nil
	}
	return []grid.SortKey{{ColumnID: columnID}}
}
