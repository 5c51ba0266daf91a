package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUnits(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		unit  DurationUnit
		want  Date
	}{
		{
			name:  "100 days across leap february",
			start: NewDate(2024, time.January, 1),
			n:     100,
			unit:  DurationUnitDay,
			want:  NewDate(2024, time.April, 10),
		},
		{
			name:  "30 days from february in a common year",
			start: NewDate(2025, time.February, 1),
			n:     30,
			unit:  DurationUnitDay,
			want:  NewDate(2025, time.March, 3),
		},
		{
			name:  "14 day trial",
			start: NewDate(2024, time.June, 1),
			n:     14,
			unit:  DurationUnitDay,
			want:  NewDate(2024, time.June, 15),
		},
		{
			name:  "cross year boundary in days",
			start: NewDate(2024, time.December, 29),
			n:     5,
			unit:  DurationUnitDay,
			want:  NewDate(2025, time.January, 3),
		},
		{
			name:  "two weeks",
			start: NewDate(2024, time.February, 20),
			n:     2,
			unit:  DurationUnitWeek,
			want:  NewDate(2024, time.March, 5),
		},
		{
			name:  "jan 31 plus one month in leap year",
			start: NewDate(2024, time.January, 31),
			n:     1,
			unit:  DurationUnitMonth,
			want:  NewDate(2024, time.February, 29),
		},
		{
			name:  "jan 31 plus one month in common year",
			start: NewDate(2025, time.January, 31),
			n:     1,
			unit:  DurationUnitMonth,
			want:  NewDate(2025, time.February, 28),
		},
		{
			name:  "mar 31 plus one month",
			start: NewDate(2024, time.March, 31),
			n:     1,
			unit:  DurationUnitMonth,
			want:  NewDate(2024, time.April, 30),
		},
		{
			name:  "dec 31 plus two months crosses year",
			start: NewDate(2024, time.December, 31),
			n:     2,
			unit:  DurationUnitMonth,
			want:  NewDate(2025, time.February, 28),
		},
		{
			name:  "fourteen months",
			start: NewDate(2024, time.November, 15),
			n:     14,
			unit:  DurationUnitMonth,
			want:  NewDate(2026, time.January, 15),
		},
		{
			name:  "negative months go backwards",
			start: NewDate(2024, time.March, 31),
			n:     -1,
			unit:  DurationUnitMonth,
			want:  NewDate(2024, time.February, 29),
		},
		{
			name:  "feb 29 plus one year",
			start: NewDate(2024, time.February, 29),
			n:     1,
			unit:  DurationUnitYear,
			want:  NewDate(2025, time.February, 28),
		},
		{
			name:  "feb 29 plus four years",
			start: NewDate(2024, time.February, 29),
			n:     4,
			unit:  DurationUnitYear,
			want:  NewDate(2028, time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddUnits(tt.start, tt.n, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "got %s want %s", got, tt.want)
		})
	}
}

func TestAddUnits_InvalidUnit(t *testing.T) {
	start := NewDate(2024, time.January, 1)
	got, err := AddUnits(start, 1, DurationUnit("fortnight"))
	require.Error(t, err)
	assert.Equal(t, start, got)
}

func TestNextBillingDate(t *testing.T) {
	start := NewDate(2024, time.January, 31)

	got, err := NextBillingDate(start, 1, DurationUnitMonth)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), got)

	_, err = NextBillingDate(start, 0, DurationUnitMonth)
	assert.ErrorContains(t, err, "positive integer")

	_, err = NextBillingDate(start, -3, DurationUnitDay)
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 100, DaysBetween(NewDate(2024, time.January, 1), NewDate(2024, time.April, 10)))
	assert.Equal(t, 0, DaysBetween(NewDate(2024, time.January, 1), NewDate(2024, time.January, 1)))
	assert.Equal(t, -1, DaysBetween(NewDate(2024, time.January, 2), NewDate(2024, time.January, 1)))
	assert.Equal(t, 366, DaysBetween(NewDate(2024, time.January, 1), NewDate(2025, time.January, 1)))
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	late := time.Date(2024, time.January, 31, 23, 30, 0, 0, ist)
	assert.Equal(t, NewDate(2024, time.January, 31), DateOf(late))
	assert.Equal(t, NewDate(2024, time.January, 31), DateOf(late.UTC()))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Start Date  `json:"start"`
		End   *Date `json:"end,omitempty"`
	}

	in := payload{Start: NewDate(2024, time.June, 1)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-06-01"}`, string(b))

	var out payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-12-31","end":"2025-01-02"}`), &out))
	assert.Equal(t, NewDate(2024, time.December, 31), out.Start)
	require.NotNil(t, out.End)
	assert.Equal(t, "2025-01-02", out.End.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start":"2024-13-01"}`), &out))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-02-29"))
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	require.NoError(t, d.Scan(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.March, 1), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.March, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", v)
}

func TestDateRangeFilter_Contains(t *testing.T) {
	from := NewDate(2024, time.January, 10)
	to := NewDate(2024, time.January, 20)
	f := &DateRangeFilter{From: &from, To: &to}

	assert.True(t, f.Contains(from))
	assert.True(t, f.Contains(to))
	assert.False(t, f.Contains(from.AddDays(-1)))
	assert.False(t, f.Contains(to.AddDays(1)))
	assert.False(t, f.Contains(Date{}))

	var open *DateRangeFilter
	assert.True(t, open.Contains(from))
}
