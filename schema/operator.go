// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import "strings"

// Operator is a per-field match operator used by search criteria.
type Operator string

const (
	OpEqual          Operator = "equal"
	OpNot            Operator = "not"
	OpNotEqual       Operator = "not-equal"
	OpLike           Operator = "like"
	OpLeftLike       Operator = "left-like"
	OpRightLike      Operator = "right-like"
	OpNotLike        Operator = "not-like"
	OpNotLeftLike    Operator = "not-left-like"
	OpNotRightLike   Operator = "not-right-like"
	OpGreater        Operator = "greater"
	OpGreaterOrEqual Operator = "greater-or-equal"
	OpLesser         Operator = "lesser"
	OpLesserOrEqual  Operator = "lesser-or-equal"
)

var operators = map[Operator]struct{}{
	OpEqual:          {},
	OpNot:            {},
	OpNotEqual:       {},
	OpLike:           {},
	OpLeftLike:       {},
	OpRightLike:      {},
	OpNotLike:        {},
	OpNotLeftLike:    {},
	OpNotRightLike:   {},
	OpGreater:        {},
	OpGreaterOrEqual: {},
	OpLesser:         {},
	OpLesserOrEqual:  {},
}

// Valid reports whether op is a member of the supported operator set.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// SortOrder is a list ordering direction.
type SortOrder string

const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// NormalizeSortOrder upper-cases s and reports whether the result is a
// valid [SortOrder].
func NormalizeSortOrder(s string) (SortOrder, bool) {
	o := SortOrder(strings.ToUpper(strings.TrimSpace(s)))
	return o, o == Ascending || o == Descending
}
