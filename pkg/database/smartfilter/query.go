// Lumen Core
// Copyright (c) 2026 The Lumen Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lumen Core.
//
// Lumen Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lumen Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lumen Core.  If not, see <http://www.gnu.org/licenses/>.

package smartfilter

import (
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Column expressions assume metadata aliased as m left joined to views
// aliased as v.
const (
	colRating     = "m.Rating"
	colDuration   = "m.Duration"
	colViewCount  = "COALESCE(v.ViewCount, 0)"
	colLastViewed = "v.LastViewed"
)

type predicate struct {
	value    any
	column   string
	operator string
}

func (p predicate) sql() string {
	if p.column == colLastViewed {
		// never viewed counts as long enough ago
		return "(" + colLastViewed + " IS NULL OR " + colLastViewed + " " + p.operator + " ?)"
	}
	return p.column + " " + p.operator + " ?"
}

// predicates lists one clause per set threshold in a fixed order. now is a
// unix timestamp used for the days-since-view cutoff.
func (c *Criteria) predicates(now int64) []predicate {
	var preds []predicate
	if c.MinRating != nil {
		preds = append(preds, predicate{column: colRating, operator: ">=", value: *c.MinRating})
	}
	if c.MinDuration != nil {
		preds = append(preds, predicate{column: colDuration, operator: ">=", value: *c.MinDuration})
	}
	if c.MaxDuration != nil {
		preds = append(preds, predicate{column: colDuration, operator: "<=", value: *c.MaxDuration})
	}
	if c.MinViews != nil {
		preds = append(preds, predicate{column: colViewCount, operator: ">=", value: *c.MinViews})
	}
	if c.MaxViews != nil {
		preds = append(preds, predicate{column: colViewCount, operator: "<=", value: *c.MaxViews})
	}
	if c.MinDaysSinceView != nil && *c.MinDaysSinceView > 0 {
		days := min(*c.MinDaysSinceView, MaxDaysSinceView)
		cutoff := now - int64(days*secondsPerDay)
		preds = append(preds, predicate{column: colLastViewed, operator: "<=", value: cutoff})
	}
	return preds
}

// BuildQuery returns the WHERE clause body and its bind arguments. An empty
// clause means every record matches. Values are always bound, never
// interpolated.
func BuildQuery(c *Criteria, now time.Time) (where string, args []any) {
	preds := c.predicates(now.Unix())
	if len(preds) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(preds))
	args = make([]any, 0, len(preds))
	for _, p := range preds {
		clauses = append(clauses, p.sql())
		args = append(args, p.value)
	}
	return strings.Join(clauses, " AND "), args
}
