/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import (
	"fmt"
	"strings"
)

// DefaultFrequencyMonths is used when neither band nor guideline sets one.
const DefaultFrequencyMonths = 12

// Frequency is the resolved recurrence interval for a band
type Frequency struct {
	MinMonths int
	MaxMonths *int
	Text      string
}

// ResolveFrequency picks the band's own cadence, falling back to the
// guideline's top-level one and finally to DefaultFrequencyMonths.
//
// Display text is the band's frequency string, else the guideline's, with a
// "(12-36 months)" suffix when a range is known or "(min 12 months)" when
// only an explicit minimum is.
func ResolveFrequency(band *AgeBand, g Guideline) Frequency {
	var minMonths, maxMonths *int
	var text string

	if band != nil && band.FrequencyMonths != nil {
		minMonths, maxMonths = band.FrequencyMonths, band.FrequencyMonthsMax
	} else if g.FrequencyMonths != nil {
		minMonths, maxMonths = g.FrequencyMonths, g.FrequencyMonthsMax
	}

	if band != nil && band.Frequency != nil && strings.TrimSpace(*band.Frequency) != "" {
		text = strings.TrimSpace(*band.Frequency)
	} else if g.Frequency != nil {
		text = strings.TrimSpace(*g.Frequency)
	}

	freq := Frequency{MinMonths: DefaultFrequencyMonths, Text: text}
	if minMonths == nil {
		return freq
	}

	freq.MinMonths = *minMonths

	var suffix string
	if maxMonths != nil {
		upper := *maxMonths
		freq.MaxMonths = &upper
		suffix = fmt.Sprintf("(%d-%d months)", *minMonths, upper)
	} else {
		suffix = fmt.Sprintf("(min %d months)", *minMonths)
	}

	if freq.Text == "" {
		freq.Text = suffix
	} else {
		freq.Text += " " + suffix
	}

	return freq
}
