/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

// BandMatch is the outcome of matching an age against a guideline's bands.
// At most one of Current and Next is set.
type BandMatch struct {
	Current *AgeBand
	Next    *AgeBand
}

// Band returns whichever band applies and whether it is still upcoming.
func (m BandMatch) Band() (band *AgeBand, upcoming bool) {
	if m.Current != nil {
		return m.Current, false
	}

	return m.Next, m.Next != nil
}

// Applicable reports whether the guideline applies now or at a later age.
func (m BandMatch) Applicable() bool {
	return m.Current != nil || m.Next != nil
}

// MatchBand finds the first band containing age, in declaration order.
// Overlapping bands are not an error: the earlier one wins. When no band
// contains age, Next is the band with the smallest minimum above age, ties
// going to the first declared.
func MatchBand(age int, bands []AgeBand) BandMatch {
	for i := range bands {
		if bands[i].Contains(age) {
			current := bands[i]
			return BandMatch{Current: &current}
		}
	}

	var next *AgeBand

	for i := range bands {
		if bands[i].Min <= age {
			continue
		}

		if next == nil || bands[i].Min < next.Min {
			candidate := bands[i]
			next = &candidate
		}
	}

	return BandMatch{Next: next}
}
