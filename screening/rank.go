/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import "slices"

// FarRelevance is the score of a guideline with no band on either side.
const FarRelevance = 1000

// RelevanceScore is 0 when a band contains age, otherwise the distance in
// years to the nearest future band's minimum or past band's maximum.
func RelevanceScore(g Guideline, age int) int {
	future, past := -1, -1

	for _, band := range g.AgeRanges {
		if band.Contains(age) {
			return 0
		}

		if band.Min > age {
			if d := band.Min - age; future < 0 || d < future {
				future = d
			}
			continue
		}

		if band.Max != nil && *band.Max < age {
			if d := age - *band.Max; past < 0 || d < past {
				past = d
			}
		}
	}

	switch {
	case future < 0 && past < 0:
		return FarRelevance
	case future < 0:
		return past
	case past < 0:
		return future
	default:
		return min(future, past)
	}
}

// RankByRelevance returns a new slice sorted by RelevanceScore ascending.
// Equal scores keep their input order.
func RankByRelevance(guidelines []Guideline, age int) []Guideline {
	type scored struct {
		guideline Guideline
		score     int
	}

	ranked := make([]scored, len(guidelines))
	for i, g := range guidelines {
		ranked[i] = scored{guideline: g, score: RelevanceScore(g, age)}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return a.score - b.score
	})

	out := make([]Guideline, len(ranked))
	for i, r := range ranked {
		out[i] = r.guideline
	}

	return out
}

// RankForPerson ranks for the person's age; a nil person ranks nothing.
func RankForPerson(guidelines []Guideline, person *Person) []Guideline {
	if person == nil {
		return []Guideline{}
	}

	return RankByRelevance(guidelines, person.Age)
}
