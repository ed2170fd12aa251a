package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scored(name string, urgency int, priority Priority) *ScoredSchedule {
	return &ScoredSchedule{
		Maintenance: MaintenanceData{Name: name, Priority: priority},
		Assessment:  Assessment{Urgency: urgency},
	}
}

func names(schedules []*ScoredSchedule) []string {
	out := make([]string, len(schedules))
	for i, s := range schedules {
		out[i] = s.Maintenance.Name
	}
	return out
}

func TestRank_UrgencyDescending(t *testing.T) {
	ranked := Rank([]*ScoredSchedule{
		scored("low", 10, PriorityCritical),
		scored("high", 95, PriorityOptional),
		scored("mid", 45, PriorityImportant),
	})

	assert.Equal(t, []string{"high", "mid", "low"}, names(ranked))
}

func TestRank_PriorityBreaksTies(t *testing.T) {
	ranked := Rank([]*ScoredSchedule{
		scored("optional", 45, PriorityOptional),
		scored("critical", 45, PriorityCritical),
		scored("recommended", 45, PriorityRecommended),
		scored("important", 45, PriorityImportant),
	})

	assert.Equal(t, []string{"critical", "important", "recommended", "optional"}, names(ranked))
}

func TestRank_StableForEqualKeys(t *testing.T) {
	ranked := Rank([]*ScoredSchedule{
		scored("first", 45, PriorityImportant),
		scored("second", 45, PriorityImportant),
		scored("third", 45, PriorityImportant),
	})

	assert.Equal(t, []string{"first", "second", "third"}, names(ranked))
}

func TestRank_Idempotent(t *testing.T) {
	input := []*ScoredSchedule{
		scored("a", 45, PriorityOptional),
		scored("b", 45, PriorityCritical),
		scored("c", 80, PriorityOptional),
	}

	once := names(Rank(input))
	twice := names(Rank(input))

	assert.Equal(t, once, twice)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]*ScoredSchedule{}))
}
