// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package memory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/z5labs/strata/rest"
	"github.com/z5labs/strata/schema"
)

func matches(def rest.Entity, row any, filter rest.Filter) bool {
	for _, cond := range filter.All {
		if !evaluate(def, row, cond) {
			return false
		}
	}
	if len(filter.Any) == 0 {
		return true
	}
	for _, cond := range filter.Any {
		if evaluate(def, row, cond) {
			return true
		}
	}
	return false
}

func evaluate(def rest.Entity, row any, cond rest.Condition) bool {
	got, ok := fieldValue(def, row, cond.Field)
	if !ok {
		return false
	}

	lhs := stringify(got)
	rhs := stringify(cond.Value)

	switch cond.Op {
	case schema.OpEqual:
		return lhs == rhs
	case schema.OpNot, schema.OpNotEqual:
		return lhs != rhs
	case schema.OpLike:
		return strings.Contains(lhs, rhs)
	case schema.OpNotLike:
		return !strings.Contains(lhs, rhs)
	case schema.OpLeftLike:
		return strings.HasSuffix(lhs, rhs)
	case schema.OpNotLeftLike:
		return !strings.HasSuffix(lhs, rhs)
	case schema.OpRightLike:
		return strings.HasPrefix(lhs, rhs)
	case schema.OpNotRightLike:
		return !strings.HasPrefix(lhs, rhs)
	case schema.OpGreater:
		return compare(got, cond.Value) > 0
	case schema.OpGreaterOrEqual:
		return compare(got, cond.Value) >= 0
	case schema.OpLesser:
		return compare(got, cond.Value) < 0
	case schema.OpLesserOrEqual:
		return compare(got, cond.Value) <= 0
	default:
		return false
	}
}

func fieldValue(def rest.Entity, row any, field string) (any, bool) {
	if field == "id" {
		return def.ID(row), true
	}
	f, ok := def.Fields[field]
	if !ok || f.Get == nil {
		return nil, false
	}
	return f.Get(row), true
}

// compare orders two values numerically when both sides parse as
// numbers and lexicographically otherwise.
func compare(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Time:
		return float64(n.UnixNano()), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func sortRows(rows []any, def rest.Entity, order []rest.Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range order {
			a, _ := fieldValue(def, rows[i], term.Field)
			b, _ := fieldValue(def, rows[j], term.Field)

			c := compare(a, b)
			if c == 0 {
				continue
			}
			if term.Direction == schema.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
