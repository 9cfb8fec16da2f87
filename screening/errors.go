/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import "errors"

var (
	ErrNoAgeBands        = errors.New("guideline has no age bands")
	ErrInvalidAgeBand    = errors.New("invalid age band")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrNotApplicable     = errors.New("guideline not applicable at this age")
	ErrUnknownGender     = errors.New("unknown gender")
	ErrUnknownVisibility = errors.New("unknown visibility")
	ErrInvalidAge        = errors.New("invalid age")
	ErrGuidelinePanic    = errors.New("guideline processing panicked")
)
