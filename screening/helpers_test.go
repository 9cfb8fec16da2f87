// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package screening

import "time"

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func band(minAge int, maxAge *int) AgeBand {
	return AgeBand{Min: minAge, Max: maxAge}
}
