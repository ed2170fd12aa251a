package domain

import "time"

// ReferencePoint is the date+mileage pair the next occurrence is
// projected from: the schedule's creation point, or its most recent
// completion once one exists.
type ReferencePoint struct {
	Date    time.Time
	Mileage int
}

// Projection holds the next-due thresholds for a schedule. A nil field
// means the rule carries no trigger of that kind.
type Projection struct {
	NextDueDate *time.Time `json:"next_due_date,omitempty"`
	NextDueKm   *int       `json:"next_due_kilometers,omitempty"`
}

// Project computes when a rule fires next from a reference point. Pure;
// must be re-run whenever the reference point changes.
func Project(rule RecurrenceRule, ref ReferencePoint) Projection {
	var p Projection
	if rule.Time != nil {
		due := addInterval(ref.Date, rule.Time.Value, rule.Time.Unit)
		p.NextDueDate = &due
	}
	if rule.Kilometers > 0 {
		due := ref.Mileage + rule.Kilometers
		p.NextDueKm = &due
	}
	return p
}

func addInterval(t time.Time, value int, unit TimeUnit) time.Time {
	switch unit {
	case UnitDays:
		return t.AddDate(0, 0, value)
	case UnitMonths:
		return addMonthsClamped(t, value)
	case UnitYears:
		return addMonthsClamped(t, value*12)
	}
	return t
}

// addMonthsClamped adds calendar months, clamping the day-of-month to
// the end of the target month instead of letting Go's AddDate roll over
// (Jan 31 + 1 month yields Feb 29/28, not Mar 2).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	y := year + (m-1)/12
	m = (m-1)%12 + 1
	if last := daysIn(y, time.Month(m)); day > last {
		day = last
	}
	h, min, sec := t.Clock()
	return time.Date(y, time.Month(m), day, h, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
