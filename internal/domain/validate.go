package domain

import (
	"fmt"
	"math"
	"time"
)

// maxMeasurement is the largest value the integer storage columns accept
const maxMeasurement = math.MaxInt32

// RawIntensity is an unvalidated request payload. Nil fields were not supplied.
type RawIntensity struct {
	From     *string  `json:"from"`
	To       *string  `json:"to"`
	Forecast *float64 `json:"forecast"`
	Actual   *float64 `json:"actual"`
	Index    *string  `json:"index"`
}

// ValidateCreate checks a create payload. Every field is required.
func (r RawIntensity) ValidateCreate() (IntensityInput, error) {
	patch, err := r.validate(true)
	if err != nil {
		return IntensityInput{}, err
	}
	return IntensityInput{
		From:     *patch.From,
		To:       *patch.To,
		Forecast: *patch.Forecast,
		Actual:   *patch.Actual,
		Index:    *patch.Index,
	}, nil
}

// ValidateUpdate checks an update payload. Only supplied fields are checked,
// but at least one field must be present.
func (r RawIntensity) ValidateUpdate() (IntensityPatch, error) {
	patch, err := r.validate(false)
	if err != nil {
		return IntensityPatch{}, err
	}
	if patch.Empty() {
		return IntensityPatch{}, ValidationErrors{"at least one field must be supplied"}
	}
	return patch, nil
}

func (r RawIntensity) validate(requireAll bool) (IntensityPatch, error) {
	var (
		errs  ValidationErrors
		patch IntensityPatch
	)

	patch.From = validateTimestamp(&errs, "from", r.From, requireAll)
	patch.To = validateTimestamp(&errs, "to", r.To, requireAll)
	patch.Forecast = validateMeasurement(&errs, "forecast", r.Forecast, requireAll)
	patch.Actual = validateMeasurement(&errs, "actual", r.Actual, requireAll)

	switch {
	case r.Index != nil:
		if idx, ok := ParseIndex(*r.Index); ok {
			patch.Index = &idx
		} else {
			errs.Add(fmt.Sprintf("index must be one of the following values: %s", indexList()))
		}
	case requireAll:
		errs.Add(fmt.Sprintf("index must be one of the following values: %s", indexList()))
	}

	if err := errs.Err(); err != nil {
		return IntensityPatch{}, err
	}
	return patch, nil
}

func validateTimestamp(errs *ValidationErrors, field string, raw *string, required bool) *time.Time {
	if raw == nil {
		if required {
			errs.Add(field + " should not be empty")
		}
		return nil
	}
	if *raw == "" {
		errs.Add(field + " should not be empty")
		return nil
	}
	t, ok := ParseTimestamp(*raw)
	if !ok {
		errs.Add(field + " must be a valid ISO 8601 date string")
		return nil
	}
	return &t
}

// validateMeasurement enforces a positive whole number. Storage accepts zero,
// but values entered through the API must be positive.
func validateMeasurement(errs *ValidationErrors, field string, raw *float64, required bool) *int64 {
	if raw == nil {
		if required {
			errs.Add(field + " should not be empty")
		}
		return nil
	}
	v := *raw
	ok := true
	if v <= 0 {
		errs.Add(field + " must be a positive number")
		ok = false
	}
	if v != math.Trunc(v) {
		errs.Add(field + " must be an integer number")
		ok = false
	}
	if v > maxMeasurement {
		errs.Add(fmt.Sprintf("%s must not be greater than %d", field, maxMeasurement))
		ok = false
	}
	if !ok {
		return nil
	}
	n := int64(v)
	return &n
}
