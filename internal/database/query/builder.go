// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEquals("kind", "dish").AddSearch("面", "name", "category")
//	where, args := wb.BuildWithPrefix()
//	// WHERE kind = ? AND (name ILIKE ? OR category ILIKE ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?". An empty value is skipped, so an unset
// filter field matches everything.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddIn adds "column IN (?, ...)". An empty list is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	ph := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		ph[i] = "?"
		args[i] = v
	}
	return wb.AddClause(fmt.Sprintf("%s IN (%s)", column, strings.Join(ph, ", ")), args...)
}

// AddSearch adds a case-insensitive substring match over columns, ORed
// together. Nullable columns should be passed wrapped in COALESCE. A blank
// term is skipped.
func (wb *WhereBuilder) AddSearch(term string, columns ...string) *WhereBuilder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return wb
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = col + ` ILIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return wb.AddClause("("+strings.Join(parts, " OR ")+")", args...)
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Build returns the clauses joined with AND, or "1=1" when empty.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns " WHERE ..." or "" when no clause was added, ready
// to append to a FROM clause.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	if wb.IsEmpty() {
		return "", []interface{}{}
	}
	where, args := wb.Build()
	return " WHERE " + where, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Page returns the LIMIT/OFFSET suffix and its arguments for a 1-based page.
func Page(page, limit int) (string, []interface{}) {
	if page < 1 {
		page = 1
	}
	return " LIMIT ? OFFSET ?", []interface{}{limit, (page - 1) * limit}
}
