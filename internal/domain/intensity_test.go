package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseIndex(t *testing.T) {
	tests := []struct {
		input string
		want  IntensityIndex
		ok    bool
	}{
		{"low", IndexLow, true},
		{"moderate", IndexModerate, true},
		{"high", IndexHigh, true},
		{"very high", IndexVeryHigh, true},
		{"VERY HIGH", "", false},
		{"very_high", "", false},
		{"test", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseIndex(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPatchApply(t *testing.T) {
	from := time.Date(2020, 1, 22, 17, 0, 0, 0, time.UTC)
	to := from.Add(30 * time.Minute)

	base := func() *IntensityRecord {
		return &IntensityRecord{ID: 1, From: from, To: to, Forecast: 200, Actual: 300, Index: IndexLow}
	}

	t.Run("empty patch leaves record untouched", func(t *testing.T) {
		rec := base()
		IntensityPatch{}.Apply(rec)
		assert.Equal(t, base(), rec)
	})

	t.Run("measurements only keep the interval", func(t *testing.T) {
		rec := base()
		IntensityPatch{Forecast: ptr(int64(100)), Actual: ptr(int64(200))}.Apply(rec)

		assert.Equal(t, int64(1), rec.ID)
		assert.Equal(t, int64(100), rec.Forecast)
		assert.Equal(t, int64(200), rec.Actual)
		assert.True(t, rec.From.Equal(from))
		assert.True(t, rec.To.Equal(to))
		assert.Equal(t, IndexLow, rec.Index)
	})

	t.Run("interval bounds are normalized to UTC", func(t *testing.T) {
		rec := base()
		zone := time.FixedZone("CET", 3600)
		newFrom := time.Date(2020, 1, 22, 19, 0, 0, 0, zone)
		IntensityPatch{From: &newFrom}.Apply(rec)

		assert.Equal(t, time.UTC, rec.From.Location())
		assert.True(t, rec.From.Equal(newFrom))
	})

	t.Run("full patch replaces every field except id", func(t *testing.T) {
		rec := base()
		in := IntensityInput{From: to, To: to.Add(time.Hour), Forecast: 5, Actual: 6, Index: IndexVeryHigh}
		PatchFromInput(in).Apply(rec)

		assert.Equal(t, int64(1), rec.ID)
		assert.Equal(t, in.NewRecord().Key(), rec.Key())
		assert.Equal(t, IndexVeryHigh, rec.Index)
	})
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, IntensityPatch{}.Empty())
	assert.False(t, IntensityPatch{Index: ptr(IndexHigh)}.Empty())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2020, 1, 22, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"millisecond zulu", "2020-01-22T17:00:00.000Z", want, true},
		{"second zulu", "2020-01-22T17:00:00Z", want, true},
		{"offset", "2020-01-22T18:00:00+01:00", want, true},
		{"no zone", "2020-01-22T17:00:00", want, true},
		{"minutes only", "2020-01-22T17:00", want, true},
		{"date only", "2020-01-22", time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "not valid date string", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2020, 1, 22, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2020-01-22T17:30:00.000Z", FormatTimestamp(ts))

	zone := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2020-01-22T17:30:00.000Z", FormatTimestamp(ts.In(zone)))
}

func TestSetClock(t *testing.T) {
	frozen := time.Date(2025, 4, 30, 20, 58, 32, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	assert.True(t, Now().Equal(frozen))
}

func TestRecordMarshalJSON(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	rec := IntensityRecord{
		ID:       1,
		From:     time.Date(2020, 1, 22, 18, 0, 0, 0, zone),
		To:       time.Date(2020, 1, 22, 17, 30, 0, 0, time.UTC),
		Forecast: 200,
		Actual:   300,
		Index:    IndexVeryHigh,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"from":"2020-01-22T17:00:00.000Z","to":"2020-01-22T17:30:00.000Z","forecast":200,"actual":300,"index":"very high"}`,
		string(data))

	data, err = json.Marshal(&rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"from":"2020-01-22T17:00:00.000Z"`)
}
