package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestScore_DualTriggerWorkedExample(t *testing.T) {
	// Chain lubrication, 6 months / 5000 km from 2024-03-01 @ 12000 km,
	// observed at 2024-07-01 @ 16800 km.
	p := Projection{
		NextDueDate: timePtr(date(2024, time.September, 1)),
		NextDueKm:   intPtr(17000),
	}
	now := Snapshot{Date: date(2024, time.July, 1), Mileage: intPtr(16800)}

	a := Score(p, now)

	require.NotNil(t, a.DaysRemaining)
	require.NotNil(t, a.KmRemaining)
	assert.Equal(t, 62, *a.DaysRemaining)
	assert.Equal(t, 200, *a.KmRemaining)
	assert.Equal(t, 65, a.Urgency)
	assert.Equal(t, StatusUrgent, a.Status)
}

func TestScore_TimeOnlyPending(t *testing.T) {
	p := Projection{NextDueDate: timePtr(date(2024, time.July, 1))}
	now := Snapshot{Date: date(2024, time.March, 1), Mileage: intPtr(12000)}

	a := Score(p, now)

	require.NotNil(t, a.DaysRemaining)
	assert.Equal(t, 122, *a.DaysRemaining)
	assert.Nil(t, a.KmRemaining)
	assert.Equal(t, 10, a.Urgency)
	assert.Equal(t, StatusPending, a.Status)
}

func TestScore_FreshScheduleUnderDualRule(t *testing.T) {
	// 6 months / 5000 km from 2024-01-01 @ 10000 km, observed two months
	// and 2000 km in: both terms still in their outer bands.
	rule := RecurrenceRule{
		Time:       &TimeTrigger{Value: 6, Unit: UnitMonths},
		Kilometers: 5000,
	}
	p := Project(rule, ReferencePoint{Date: date(2024, time.January, 1), Mileage: 10000})
	now := Snapshot{Date: date(2024, time.March, 1), Mileage: intPtr(12000)}

	a := Score(p, now)

	require.NotNil(t, a.DaysRemaining)
	require.NotNil(t, a.KmRemaining)
	assert.Equal(t, 122, *a.DaysRemaining)
	assert.Equal(t, 3000, *a.KmRemaining)
	assert.Equal(t, 30, a.Urgency)
	assert.Equal(t, StatusPending, a.Status)
}

func TestScore_SingleTriggerCeilingIs50(t *testing.T) {
	overdue := Projection{NextDueDate: timePtr(date(2024, time.January, 1))}
	now := Snapshot{Date: date(2024, time.July, 1), Mileage: nil}

	a := Score(overdue, now)

	assert.Equal(t, 50, a.Urgency)
	assert.Equal(t, StatusOverdue, a.Status)
}

func TestScore_DualOverdueCapsAt100(t *testing.T) {
	p := Projection{
		NextDueDate: timePtr(date(2024, time.January, 1)),
		NextDueKm:   intPtr(10000),
	}
	now := Snapshot{Date: date(2024, time.July, 1), Mileage: intPtr(15000)}

	a := Score(p, now)

	assert.Equal(t, 100, a.Urgency)
	assert.Equal(t, StatusOverdue, a.Status)
}

func TestScore_DistanceOmittedWhenNoLedgerEntries(t *testing.T) {
	p := Projection{
		NextDueDate: timePtr(date(2024, time.September, 1)),
		NextDueKm:   intPtr(17000),
	}
	now := Snapshot{Date: date(2024, time.July, 1), Mileage: nil}

	a := Score(p, now)

	require.NotNil(t, a.DaysRemaining)
	assert.Nil(t, a.KmRemaining)
	assert.Equal(t, 20, a.Urgency)
}

func TestScore_DueTodayCountsAsUrgentNotOverdue(t *testing.T) {
	p := Projection{NextDueDate: timePtr(date(2024, time.July, 1))}
	now := Snapshot{Date: date(2024, time.July, 1)}

	a := Score(p, now)

	require.NotNil(t, a.DaysRemaining)
	assert.Equal(t, 0, *a.DaysRemaining)
	assert.Equal(t, 45, a.Urgency)
	assert.Equal(t, StatusUrgent, a.Status)
}

func TestScore_ExactKmThresholdIsNotOverdue(t *testing.T) {
	p := Projection{NextDueKm: intPtr(17000)}
	now := Snapshot{Date: date(2024, time.July, 1), Mileage: intPtr(17000)}

	a := Score(p, now)

	require.NotNil(t, a.KmRemaining)
	assert.Equal(t, 0, *a.KmRemaining)
	assert.Equal(t, 45, a.Urgency)
	assert.Equal(t, StatusUrgent, a.Status)
}

func TestTimeContribution_Bands(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{-1, 50},
		{0, 45},
		{7, 45},
		{8, 35},
		{30, 35},
		{31, 20},
		{90, 20},
		{91, 10},
		{365, 10},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, timeContribution(c.days), "days=%d", c.days)
	}
}

func TestDistanceContribution_Bands(t *testing.T) {
	cases := []struct {
		km   int
		want int
	}{
		{-1, 50},
		{0, 45},
		{500, 45},
		{501, 35},
		{2000, 35},
		{2001, 20},
		{5000, 20},
		{5001, 10},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, distanceContribution(c.km), "km=%d", c.km)
	}
}

func TestScore_UrgencyNeverDecreasesAsDueDateApproaches(t *testing.T) {
	p := Projection{NextDueDate: timePtr(date(2024, time.December, 31))}

	prev := -1
	for day := 1; day <= 365; day++ {
		now := Snapshot{Date: date(2024, time.January, 1).AddDate(0, 0, day-1)}
		a := Score(p, now)
		assert.GreaterOrEqual(t, a.Urgency, prev, "day %d", day)
		prev = a.Urgency
	}
}

func TestDeriveStatus_MostUrgentTriggerWins(t *testing.T) {
	// Time comfortably away, distance already exceeded.
	a := Score(
		Projection{
			NextDueDate: timePtr(date(2025, time.January, 1)),
			NextDueKm:   intPtr(10000),
		},
		Snapshot{Date: date(2024, time.July, 1), Mileage: intPtr(10500)},
	)

	assert.Equal(t, StatusOverdue, a.Status)
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, daysBetween(a, b))
	assert.Equal(t, -1, daysBetween(b, a))
}
