// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

// Package testinfra provides shared test infrastructure for packages that
// exercise a real embedded DuckDB store.
//
//	func TestSomething(t *testing.T) {
//	    db := testinfra.NewDB(t)
//	    food := testinfra.InsertFood(t, db, "红烧肉", models.KindDish, models.StatusActive)
//	    // ...
//	}
//
// Databases are in-memory and closed in t.Cleanup. Creation is serialized
// across the test binary because concurrent DuckDB CGO initialization can
// stall under CI resource pressure.
package testinfra
