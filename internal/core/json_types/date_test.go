package json_types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-05-06", NewDate(2024, time.May, 6)},
		{"2024/05/06", NewDate(2024, time.May, 6)},
		{"2024-05-06T10:00:00+03:00", NewDate(2024, time.May, 6)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDate("06.05.2024")
	assert.Error(t, err)
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)

	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, NewDate(2024, time.March, 1), d.AddDays(2))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, time.Wednesday, d.Weekday())
	assert.Equal(t, "2024-02-28", d.String())
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.May, 6)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-06"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024/05/06"`), &back))
	assert.Equal(t, d, back)
}

func TestDate_JSONZero(t *testing.T) {
	data, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	for _, in := range []string{"null", `""`, `"  "`} {
		back := NewDate(2024, time.May, 6)
		require.NoError(t, json.Unmarshal([]byte(in), &back), in)
		assert.True(t, back.IsZero(), in)
	}

	type record struct {
		Date Date `json:"date"`
	}
	data, err = json.Marshal(record{})
	require.NoError(t, err)

	var got record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"-0001-11-30"`), &got.Date))
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("10:00:59")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(10, 0), got)

	got, err = ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", got.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestTimeOfDay_Add(t *testing.T) {
	assert.Equal(t, NewTimeOfDay(9, 0), NewTimeOfDay(8, 0).Add(time.Hour))
	assert.Equal(t, NewTimeOfDay(8, 50), NewTimeOfDay(8, 0).Add(50*time.Minute))
	assert.True(t, NewTimeOfDay(8, 0).Before(NewTimeOfDay(8, 1)))
}
