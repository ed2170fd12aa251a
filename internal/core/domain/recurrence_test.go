package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecurrenceValidate_TimeOnly(t *testing.T) {
	rule := RecurrenceRule{Time: &TimeTrigger{Value: 6, Unit: UnitMonths}}
	assert.NoError(t, rule.Validate())
	assert.True(t, rule.HasTime())
	assert.False(t, rule.HasDistance())
}

func TestRecurrenceValidate_DistanceOnly(t *testing.T) {
	rule := RecurrenceRule{Kilometers: 5000}
	assert.NoError(t, rule.Validate())
	assert.False(t, rule.HasTime())
	assert.True(t, rule.HasDistance())
}

func TestRecurrenceValidate_BothTriggers(t *testing.T) {
	rule := RecurrenceRule{
		Time:       &TimeTrigger{Value: 1, Unit: UnitYears},
		Kilometers: 10000,
	}
	assert.NoError(t, rule.Validate())
}

func TestRecurrenceValidate_RejectsEmptyRule(t *testing.T) {
	rule := RecurrenceRule{}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRecurrence)
}

func TestRecurrenceValidate_RejectsZeroTimeValue(t *testing.T) {
	rule := RecurrenceRule{Time: &TimeTrigger{Value: 0, Unit: UnitDays}}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRecurrence)
}

func TestRecurrenceValidate_RejectsUnknownUnit(t *testing.T) {
	rule := RecurrenceRule{Time: &TimeTrigger{Value: 2, Unit: TimeUnit("weeks")}}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRecurrence)
}

func TestRecurrenceValidate_RejectsNegativeKilometers(t *testing.T) {
	rule := RecurrenceRule{Kilometers: -100}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRecurrence)
}
