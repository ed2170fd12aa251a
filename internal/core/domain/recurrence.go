package domain

type TimeUnit string

const (
	UnitDays   TimeUnit = "days"
	UnitMonths TimeUnit = "months"
	UnitYears  TimeUnit = "years"
)

type TimeTrigger struct {
	Value int      `json:"value" validate:"required,min=1"`
	Unit  TimeUnit `json:"unit" validate:"required,oneof=days months years"`
}

// RecurrenceRule describes when a maintenance becomes due again.
// Either trigger may be absent, but never both: a rule with no time
// interval and no distance interval can never fire.
type RecurrenceRule struct {
	Time       *TimeTrigger `json:"time,omitempty"`
	Kilometers int          `json:"kilometers,omitempty" validate:"min=0"`
}

func (r RecurrenceRule) HasTime() bool {
	return r.Time != nil
}

func (r RecurrenceRule) HasDistance() bool {
	return r.Kilometers > 0
}

func (r RecurrenceRule) Validate() error {
	if !r.HasTime() && !r.HasDistance() {
		return ErrInvalidRecurrence
	}
	if r.Time != nil {
		if r.Time.Value <= 0 {
			return ErrInvalidRecurrence
		}
		switch r.Time.Unit {
		case UnitDays, UnitMonths, UnitYears:
		default:
			return ErrInvalidRecurrence
		}
	}
	if r.Kilometers < 0 {
		return ErrInvalidRecurrence
	}
	return nil
}
