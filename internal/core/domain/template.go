package domain

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityCritical    Priority = "critical"
	PriorityImportant   Priority = "important"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

// Weight orders priorities for ranking ties: critical > important >
// recommended > optional. Unknown values sort last.
func (p Priority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityImportant:
		return 3
	case PriorityRecommended:
		return 2
	case PriorityOptional:
		return 1
	}
	return 0
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyWorkshop Difficulty = "workshop"
)

// MaintenanceData is the maintenance definition shared by library
// templates and custom schedules: both shapes resolve to this.
type MaintenanceData struct {
	Name             string         `json:"name" validate:"required,max=200"`
	Category         string         `json:"category,omitempty" validate:"max=100"`
	Priority         Priority       `json:"priority" validate:"required,oneof=critical important recommended optional"`
	Difficulty       Difficulty     `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard workshop"`
	Recurrence       RecurrenceRule `json:"recurrence"`
	EstimatedMinutes int            `json:"estimated_minutes,omitempty" validate:"min=0"`
	EstimatedCost    float64        `json:"estimated_cost,omitempty" validate:"min=0"`
	Instructions     string         `json:"instructions,omitempty"`
}

// MaintenanceTemplate is a library-level maintenance definition shared
// across vehicles. Created by an administrator; never destroyed while
// schedules still reference it.
type MaintenanceTemplate struct {
	ID        uuid.UUID       `json:"id"`
	Data      MaintenanceData `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
