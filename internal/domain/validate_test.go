package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawIntensity {
	return RawIntensity{
		From:     ptr("2020-01-22T17:00:00.000Z"),
		To:       ptr("2020-01-22T17:30:00.000Z"),
		Forecast: ptr(200.0),
		Actual:   ptr(300.0),
		Index:    ptr("low"),
	}
}

func validationMessages(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	return verrs
}

func TestValidateCreate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		in, err := validRaw().ValidateCreate()
		require.NoError(t, err)

		assert.True(t, in.From.Equal(time.Date(2020, 1, 22, 17, 0, 0, 0, time.UTC)))
		assert.True(t, in.To.Equal(time.Date(2020, 1, 22, 17, 30, 0, 0, time.UTC)))
		assert.Equal(t, int64(200), in.Forecast)
		assert.Equal(t, int64(300), in.Actual)
		assert.Equal(t, IndexLow, in.Index)
	})

	t.Run("invalid index", func(t *testing.T) {
		raw := validRaw()
		raw.Index = ptr("test")
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{
			"index must be one of the following values: low, moderate, high, very high",
		}, validationMessages(t, err))
	})

	t.Run("invalid dates", func(t *testing.T) {
		raw := validRaw()
		raw.From = ptr("not valid date string")
		raw.To = ptr("random invalid date string")
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{
			"from must be a valid ISO 8601 date string",
			"to must be a valid ISO 8601 date string",
		}, validationMessages(t, err))
	})

	t.Run("negative measurements", func(t *testing.T) {
		raw := validRaw()
		raw.Forecast = ptr(-1.0)
		raw.Actual = ptr(-1.0)
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{
			"forecast must be a positive number",
			"actual must be a positive number",
		}, validationMessages(t, err))
	})

	t.Run("fractional measurement", func(t *testing.T) {
		raw := validRaw()
		raw.Forecast = ptr(12.5)
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{"forecast must be an integer number"}, validationMessages(t, err))
	})

	t.Run("measurement too large", func(t *testing.T) {
		raw := validRaw()
		raw.Actual = ptr(float64(maxMeasurement) + 1)
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{"actual must not be greater than 2147483647"}, validationMessages(t, err))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := RawIntensity{}.ValidateCreate()

		msgs := validationMessages(t, err)
		assert.Len(t, msgs, 5)
		assert.Contains(t, msgs, "from should not be empty")
		assert.Contains(t, msgs, "forecast should not be empty")
	})

	t.Run("empty date string", func(t *testing.T) {
		raw := validRaw()
		raw.To = ptr("")
		_, err := raw.ValidateCreate()

		assert.Equal(t, ValidationErrors{"to should not be empty"}, validationMessages(t, err))
	})
}

func TestValidateUpdate(t *testing.T) {
	t.Run("partial payload", func(t *testing.T) {
		patch, err := RawIntensity{Forecast: ptr(100.0), Actual: ptr(200.0)}.ValidateUpdate()
		require.NoError(t, err)

		assert.Nil(t, patch.From)
		assert.Nil(t, patch.To)
		assert.Nil(t, patch.Index)
		require.NotNil(t, patch.Forecast)
		assert.Equal(t, int64(100), *patch.Forecast)
	})

	t.Run("full payload", func(t *testing.T) {
		patch, err := validRaw().ValidateUpdate()
		require.NoError(t, err)

		assert.NotNil(t, patch.From)
		assert.NotNil(t, patch.To)
		assert.NotNil(t, patch.Index)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := RawIntensity{}.ValidateUpdate()
		assert.Equal(t, ValidationErrors{"at least one field must be supplied"}, validationMessages(t, err))
	})

	t.Run("supplied fields are still validated", func(t *testing.T) {
		_, err := RawIntensity{Index: ptr("extreme")}.ValidateUpdate()
		assert.Len(t, validationMessages(t, err), 1)
	})
}

func TestValidationErrorsErr(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("a")
	errs.Add("b")
	require.Error(t, errs.Err())
	assert.Equal(t, "a; b", errs.Error())
}
