// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package query builds parameterized WHERE clauses for the database package.

Every value is bound through a placeholder; column names are always
compile-time constants supplied by the caller.

	wb := query.NewWhereBuilder().
	    AddEquals("kind", string(filter.Kind)).
	    AddEquals("status", status).
	    AddSearch(filter.Search, "name", "category", "COALESCE(description, '')")
	where, args := wb.BuildWithPrefix()

	limit, limitArgs := query.Page(filter.Page, filter.Limit)
	rows, err := conn.QueryContext(ctx,
	    "SELECT ... FROM foods"+where+" ORDER BY created_at DESC"+limit,
	    append(args, limitArgs...)...)

Search terms are matched with ILIKE and '\' as the escape character, so a
literal % or _ typed by a user does not act as a wildcard.
*/
package query
