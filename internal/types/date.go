package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. Billing is day-granular so
// every subscription boundary is a Date, never a timestamp.
// The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns the calendar date for the given year, month and day.
// Out-of-range values are normalized the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// AddDays returns d shifted by n days. n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(d.AddDate(0, 0, n))
}

// DaysBetween returns the number of whole days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end Date) int {
	// both values are UTC midnight so the division is exact
	return int(end.Sub(start.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer. Dates are stored as YYYY-MM-DD strings.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE, TEXT and TIMESTAMP columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into types.Date", src)
	}
}

// AddUnits offsets a date by n units of a billing duration unit.
// Month and year offsets land on the last valid day of the target month when
// the source day does not exist there, so Jan 31 + 1 month is Feb 28 (or 29)
// and Feb 29 + 1 year is Feb 28.
func AddUnits(d Date, n int, unit DurationUnit) (Date, error) {
	switch unit {
	case DurationUnitDay:
		return d.AddDays(n), nil
	case DurationUnitWeek:
		return d.AddDays(7 * n), nil
	case DurationUnitMonth:
		return AddClampedDate(d, 0, n), nil
	case DurationUnitYear:
		return AddClampedDate(d, n, 0), nil
	default:
		return d, fmt.Errorf("invalid duration unit: %q", unit)
	}
}

// NextBillingDate returns the end of a billing period that starts at start and
// lasts duration units. The duration must be positive.
func NextBillingDate(start Date, duration int, unit DurationUnit) (Date, error) {
	if duration <= 0 {
		return start, fmt.Errorf("billing duration must be a positive integer, got %d", duration)
	}
	return AddUnits(start, duration, unit)
}

// AddClampedDate adds years and months to d, clamping the day to the last
// valid day of the resulting month.
func AddClampedDate(d Date, years, months int) Date {
	y, m, day := d.Date()

	total := int(m) - 1 + months
	newY := y + years + floorDiv(total, 12)
	newM := time.Month(total - floorDiv(total, 12)*12 + 1)

	if last := daysIn(newY, newM); day > last {
		day = last
	}

	return NewDate(newY, newM, day)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
