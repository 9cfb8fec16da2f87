/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedGuideline wraps every per-record decode failure.
var ErrMalformedGuideline = errors.New("malformed guideline")

// DecodeGuidelines reads a JSON array of guidelines, or an object with a
// "guidelines" array, accepting snake_case and camelCase keys.
//
// A record whose bands cannot be parsed is still returned, with no age
// bands, so schedule building isolates it as a placeholder. The returned
// error joins every per-record failure; callers wanting strict imports
// should reject on any error.
func DecodeGuidelines(r io.Reader) ([]Guideline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read guidelines: %w", err)
	}

	var records []wireGuideline

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Guidelines []wireGuideline `json:"guidelines"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode guidelines: %w", err)
		}
		records = envelope.Guidelines
	} else if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to decode guidelines: %w", err)
	}

	guidelines := make([]Guideline, 0, len(records))

	var errs []error

	for i, rec := range records {
		g, recErr := rec.normalise()
		if recErr != nil {
			errs = append(errs, fmt.Errorf("%w %d (%q): %w", ErrMalformedGuideline, i, g.Name, recErr))
		}
		guidelines = append(guidelines, g)
	}

	return guidelines, errors.Join(errs...)
}

// flexValue holds a raw JSON scalar that may be a number or a string.
type flexValue struct {
	raw json.RawMessage
}

func (v *flexValue) UnmarshalJSON(data []byte) error {
	v.raw = append(v.raw[:0], data...)
	return nil
}

func (v *flexValue) isSet() bool {
	return v != nil && len(v.raw) > 0 && string(v.raw) != "null"
}

func (v *flexValue) intValue() (*int, error) {
	if !v.isSet() {
		return nil, nil
	}

	text := string(v.raw)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
		if text == "" {
			return nil, nil
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		if f, ferr := strconv.ParseFloat(text, 64); ferr == nil && f == float64(int(f)) {
			n = int(f)
		} else {
			return nil, fmt.Errorf("not a whole number: %s", v.raw)
		}
	}

	return &n, nil
}

type wireBand struct {
	MinAge             *flexValue `json:"min_age"`
	MinAgeCamel        *flexValue `json:"minAge"`
	Min                *flexValue `json:"min"`
	MaxAge             *flexValue `json:"max_age"`
	MaxAgeCamel        *flexValue `json:"maxAge"`
	Max                *flexValue `json:"max"`
	Label              string     `json:"label"`
	Frequency          *string    `json:"frequency"`
	FrequencyMonths    *flexValue `json:"frequency_months"`
	FrequencyMonthsCC  *flexValue `json:"frequencyMonths"`
	FrequencyMonthsMax *flexValue `json:"frequency_months_max"`
	FrequencyMaxCC     *flexValue `json:"frequencyMonthsMax"`
	Notes              *string    `json:"notes"`
}

type wireGuideline struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Genders            json.RawMessage `json:"genders"`
	Gender             json.RawMessage `json:"gender"`
	Visibility         string          `json:"visibility"`
	AgeRanges          []wireBand      `json:"age_ranges"`
	AgeRangesCamel     []wireBand      `json:"ageRanges"`
	Frequency          *string         `json:"frequency"`
	FrequencyMonths    *flexValue      `json:"frequency_months"`
	FrequencyMonthsCC  *flexValue      `json:"frequencyMonths"`
	FrequencyMonthsMax *flexValue      `json:"frequency_months_max"`
	FrequencyMaxCC     *flexValue      `json:"frequencyMonthsMax"`
	LastCompleted      *string         `json:"last_completed_date"`
	LastCompletedCC    *string         `json:"lastCompletedDate"`
	Tags               []string        `json:"tags"`
	CreatedBy          string          `json:"created_by"`
	CreatedByCC        string          `json:"createdBy"`
}

func firstSet(values ...*flexValue) *flexValue {
	for _, v := range values {
		if v.isSet() {
			return v
		}
	}

	return nil
}

func firstString(values ...*string) *string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			s := strings.TrimSpace(*v)
			return &s
		}
	}

	return nil
}

func (w wireBand) normalise() (AgeBand, error) {
	minValue, err := firstSet(w.MinAge, w.MinAgeCamel, w.Min).intValue()
	if err != nil {
		return AgeBand{}, fmt.Errorf("min age: %w", err)
	}

	if minValue == nil {
		return AgeBand{}, fmt.Errorf("%w: missing minimum age", ErrInvalidAgeBand)
	}

	maxValue, err := firstSet(w.MaxAge, w.MaxAgeCamel, w.Max).intValue()
	if err != nil {
		return AgeBand{}, fmt.Errorf("max age: %w", err)
	}

	months, err := firstSet(w.FrequencyMonths, w.FrequencyMonthsCC).intValue()
	if err != nil {
		return AgeBand{}, fmt.Errorf("frequency months: %w", err)
	}

	monthsMax, err := firstSet(w.FrequencyMonthsMax, w.FrequencyMaxCC).intValue()
	if err != nil {
		return AgeBand{}, fmt.Errorf("frequency months max: %w", err)
	}

	band := AgeBand{
		Min:                *minValue,
		Max:                maxValue,
		Label:              strings.TrimSpace(w.Label),
		Frequency:          firstString(w.Frequency),
		FrequencyMonths:    months,
		FrequencyMonthsMax: monthsMax,
		Notes:              firstString(w.Notes),
	}

	return band, band.Validate()
}

func (w wireGuideline) normalise() (Guideline, error) {
	g := Guideline{
		ID:          strings.TrimSpace(w.ID),
		Name:        strings.TrimSpace(w.Name),
		Description: strings.TrimSpace(w.Description),
		Category:    strings.TrimSpace(w.Category),
		Frequency:   firstString(w.Frequency),
		Tags:        w.Tags,
		CreatedBy:   strings.TrimSpace(w.CreatedBy),
	}

	if g.CreatedBy == "" {
		g.CreatedBy = strings.TrimSpace(w.CreatedByCC)
	}

	var errs []error

	if g.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}

	visibility, err := ParseVisibility(w.Visibility)
	if err != nil {
		errs = append(errs, err)
	}
	g.Visibility = visibility

	genders, err := decodeGenders(w.Genders, w.Gender)
	if err != nil {
		errs = append(errs, err)
	}
	g.Genders = genders

	if months, err := firstSet(w.FrequencyMonths, w.FrequencyMonthsCC).intValue(); err != nil {
		errs = append(errs, fmt.Errorf("frequency months: %w", err))
	} else {
		g.FrequencyMonths = months
	}

	if monthsMax, err := firstSet(w.FrequencyMonthsMax, w.FrequencyMaxCC).intValue(); err != nil {
		errs = append(errs, fmt.Errorf("frequency months max: %w", err))
	} else {
		g.FrequencyMonthsMax = monthsMax
	}

	if last := firstString(w.LastCompleted, w.LastCompletedCC); last != nil {
		date, err := time.Parse(time.DateOnly, *last)
		if err != nil {
			errs = append(errs, fmt.Errorf("last completed date: %w", err))
		} else {
			g.LastCompletedDate = &date
		}
	}

	wireBands := w.AgeRanges
	if len(wireBands) == 0 {
		wireBands = w.AgeRangesCamel
	}

	bands := make([]AgeBand, 0, len(wireBands))
	for i, wb := range wireBands {
		band, err := wb.normalise()
		if err != nil {
			errs = append(errs, fmt.Errorf("age band %d: %w", i, err))
			bands = nil
			break
		}
		bands = append(bands, band)
	}
	g.AgeRanges = bands

	if len(errs) == 0 {
		if err := g.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return g, errors.Join(errs...)
}

// decodeGenders accepts a list or a single string under either key.
func decodeGenders(list, single json.RawMessage) ([]GuidelineGender, error) {
	raw := list
	if len(bytes.TrimSpace(raw)) == 0 || string(raw) == "null" {
		raw = single
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []GuidelineGender{GuidelineGenderAll}, nil
	}

	var values []string
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("genders: %w", err)
		}
	} else {
		var one string
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("genders: %w", err)
		}
		values = []string{one}
	}

	genders := make([]GuidelineGender, 0, len(values))
	for _, value := range values {
		gender, err := ParseGuidelineGender(value)
		if err != nil {
			return nil, err
		}
		genders = append(genders, gender)
	}

	if len(genders) == 0 {
		genders = append(genders, GuidelineGenderAll)
	}

	return genders, nil
}
