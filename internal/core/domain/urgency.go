package domain

import "time"

type ScheduleStatus string

const (
	StatusOverdue ScheduleStatus = "overdue"
	StatusUrgent  ScheduleStatus = "urgent"
	StatusDueSoon ScheduleStatus = "due_soon"
	StatusPending ScheduleStatus = "pending"
)

// Snapshot is the explicit "now" every scoring call receives. Mileage is
// nil when the vehicle has no accepted ledger entries; the distance term
// is then omitted from the score rather than defaulted to zero.
type Snapshot struct {
	Date    time.Time
	Mileage *int
}

// Assessment is the derived urgency of one schedule at one instant. It is
// never persisted; "now" moves continuously, so it is recomputed on every
// read.
type Assessment struct {
	DaysRemaining *int           `json:"days_remaining,omitempty"`
	KmRemaining   *int           `json:"km_remaining,omitempty"`
	Urgency       int            `json:"urgency"`
	Status        ScheduleStatus `json:"status"`
}

// Score blends the two triggers into a 0-100 urgency. Each trigger
// contributes at most 50, so a single-trigger rule tops out at 50: a
// schedule under dual pressure is structurally more urgent at its
// ceiling than one governed by a single signal.
func Score(p Projection, now Snapshot) Assessment {
	var a Assessment
	urgency := 0

	if p.NextDueDate != nil {
		days := daysBetween(now.Date, *p.NextDueDate)
		a.DaysRemaining = &days
		urgency += timeContribution(days)
	}
	if p.NextDueKm != nil && now.Mileage != nil {
		km := *p.NextDueKm - *now.Mileage
		a.KmRemaining = &km
		urgency += distanceContribution(km)
	}
	if urgency > 100 {
		urgency = 100
	}
	a.Urgency = urgency
	a.Status = deriveStatus(a.DaysRemaining, a.KmRemaining)
	return a
}

func timeContribution(days int) int {
	switch {
	case days < 0:
		return 50
	case days <= 7:
		return 45
	case days <= 30:
		return 35
	case days <= 90:
		return 20
	default:
		return 10
	}
}

func distanceContribution(km int) int {
	switch {
	case km < 0:
		return 50
	case km <= 500:
		return 45
	case km <= 2000:
		return 35
	case km <= 5000:
		return 20
	default:
		return 10
	}
}

func deriveStatus(days, km *int) ScheduleStatus {
	switch {
	case (days != nil && *days < 0) || (km != nil && *km < 0):
		return StatusOverdue
	case (days != nil && *days <= 7) || (km != nil && *km <= 500):
		return StatusUrgent
	case (days != nil && *days <= 30) || (km != nil && *km <= 2000):
		return StatusDueSoon
	default:
		return StatusPending
	}
}

// daysBetween counts whole calendar days from a to b, signed, ignoring
// the time-of-day component of either instant.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
