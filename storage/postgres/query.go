// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/z5labs/strata/rest"
	"github.com/z5labs/strata/schema"
)

// queryBuilder accumulates a SQL statement with positional arguments.
// Field names never reach the statement text raw; every field access
// goes through a fixed projection over the id column or the doc column.
type queryBuilder struct {
	b    strings.Builder
	args []any
}

func (q *queryBuilder) writef(format string, vs ...any) {
	fmt.Fprintf(&q.b, format, vs...)
}

func (q *queryBuilder) sql() string {
	return q.b.String()
}

func (q *queryBuilder) bind(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *queryBuilder) where(filter rest.Filter) {
	if filter.Empty() {
		return
	}

	var clauses []string
	for _, cond := range filter.All {
		clauses = append(clauses, q.condition(cond))
	}
	if len(filter.Any) > 0 {
		any := make([]string, 0, len(filter.Any))
		for _, cond := range filter.Any {
			any = append(any, q.condition(cond))
		}
		clauses = append(clauses, "("+strings.Join(any, " OR ")+")")
	}

	q.writef(" WHERE %s", strings.Join(clauses, " AND "))
}

func (q *queryBuilder) condition(cond rest.Condition) string {
	col := column(cond.Field)
	arg := q.bind(fmt.Sprintf("%v", cond.Value))

	switch cond.Op {
	case schema.OpEqual:
		return fmt.Sprintf("%s = %s", col, arg)
	case schema.OpNot, schema.OpNotEqual:
		return fmt.Sprintf("%s <> %s", col, arg)
	case schema.OpLike:
		return fmt.Sprintf("%s LIKE '%%' || %s || '%%'", col, arg)
	case schema.OpNotLike:
		return fmt.Sprintf("%s NOT LIKE '%%' || %s || '%%'", col, arg)
	case schema.OpLeftLike:
		return fmt.Sprintf("%s LIKE '%%' || %s", col, arg)
	case schema.OpNotLeftLike:
		return fmt.Sprintf("%s NOT LIKE '%%' || %s", col, arg)
	case schema.OpRightLike:
		return fmt.Sprintf("%s LIKE %s || '%%'", col, arg)
	case schema.OpNotRightLike:
		return fmt.Sprintf("%s NOT LIKE %s || '%%'", col, arg)
	case schema.OpGreater:
		return q.ordered(col, ">", arg, cond.Value)
	case schema.OpGreaterOrEqual:
		return q.ordered(col, ">=", arg, cond.Value)
	case schema.OpLesser:
		return q.ordered(col, "<", arg, cond.Value)
	case schema.OpLesserOrEqual:
		return q.ordered(col, "<=", arg, cond.Value)
	default:
		// unreachable: operators validate at resolve time
		return "FALSE"
	}
}

// ordered compares numerically when the condition value is numeric and
// textually otherwise.
func (q *queryBuilder) ordered(col, op, arg string, value any) string {
	if isNumeric(value) {
		return fmt.Sprintf("(%s)::numeric %s (%s)::numeric", col, op, arg)
	}
	return fmt.Sprintf("%s %s %s", col, op, arg)
}

func (q *queryBuilder) orderBy(order []rest.Order) {
	if len(order) == 0 {
		return
	}

	terms := make([]string, 0, len(order))
	for _, term := range order {
		dir := "ASC"
		if term.Direction == schema.Descending {
			dir = "DESC"
		}
		terms = append(terms, column(term.Field)+" "+dir)
	}
	q.writef(" ORDER BY %s", strings.Join(terms, ", "))
}

func (q *queryBuilder) window(limit, offset int) {
	if limit > 0 {
		q.writef(" LIMIT %s", q.bind(limit))
	}
	if offset > 0 {
		q.writef(" OFFSET %s", q.bind(offset))
	}
}

func column(field string) string {
	if field == "id" {
		return "id"
	}
	return fmt.Sprintf("doc->>%s", quoteLiteral(field))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isNumeric(v any) bool {
	switch n := v.(type) {
	case int, int32, int64, uint, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	default:
		return false
	}
}
