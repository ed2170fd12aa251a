package domain

import "sort"

// Rank orders scored schedules for display: urgency descending, ties
// broken by static priority descending. The sort is stable so
// equal-keyed schedules keep their relative order between renders.
func Rank(schedules []*ScoredSchedule) []*ScoredSchedule {
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].Assessment.Urgency != schedules[j].Assessment.Urgency {
			return schedules[i].Assessment.Urgency > schedules[j].Assessment.Urgency
		}
		return schedules[i].Maintenance.Priority.Weight() > schedules[j].Maintenance.Priority.Weight()
	})
	return schedules
}
