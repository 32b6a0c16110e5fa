package types

import (
	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const CommonFilterOperatorEq CommonFilterOperator = "eq"

// CommonFilter is a single column predicate used by listing queries.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// NewEqFilter is a shorthand for the most common predicate.
func NewEqFilter(field string, value any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorEq, Values: []any{value}}
}

// Build constructs a GORM expression. Only equality is supported.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 || f.Operator != CommonFilterOperatorEq {
		return
	}
	clause.Eq{Column: f.Field, Value: f.Values[0]}.Build(builder)
}

// FiltersAnd combines filters into a single AND expression; an empty list matches everything.
type FiltersAnd []*CommonFilter

func (w FiltersAnd) Build(builder clause.Builder) {
	if len(w) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w))
	for _, f := range w {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}
