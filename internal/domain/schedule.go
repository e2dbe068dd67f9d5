package domain

import (
	"fmt"
	"time"
)

// TimeSlot is a single availability window within a day. Times are
// "HH:MM" strings, matching what the scheduling UI submits.
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// Validate checks that both times parse and that the slot is non-empty.
func (s TimeSlot) Validate() error {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q", s.StartTime)
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q", s.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("slot end %q is not after start %q", s.EndTime, s.StartTime)
	}
	return nil
}

// WeeklySchedule maps each weekday to an ordered list of time slots.
type WeeklySchedule struct {
	Monday    []TimeSlot `json:"monday"`
	Tuesday   []TimeSlot `json:"tuesday"`
	Wednesday []TimeSlot `json:"wednesday"`
	Thursday  []TimeSlot `json:"thursday"`
	Friday    []TimeSlot `json:"friday"`
	Saturday  []TimeSlot `json:"saturday"`
	Sunday    []TimeSlot `json:"sunday"`
}

// EmptySchedule returns a schedule with no availability. New walker
// profiles start from this.
func EmptySchedule() WeeklySchedule {
	return WeeklySchedule{
		Monday:    []TimeSlot{},
		Tuesday:   []TimeSlot{},
		Wednesday: []TimeSlot{},
		Thursday:  []TimeSlot{},
		Friday:    []TimeSlot{},
		Saturday:  []TimeSlot{},
		Sunday:    []TimeSlot{},
	}
}

// SlotsFor returns the slots for a weekday.
func (w WeeklySchedule) SlotsFor(day time.Weekday) []TimeSlot {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// Validate checks every slot on every day.
func (w WeeklySchedule) Validate() error {
	days := []struct {
		name  string
		slots []TimeSlot
	}{
		{"monday", w.Monday},
		{"tuesday", w.Tuesday},
		{"wednesday", w.Wednesday},
		{"thursday", w.Thursday},
		{"friday", w.Friday},
		{"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
	for _, d := range days {
		for i, slot := range d.slots {
			if err := slot.Validate(); err != nil {
				return fmt.Errorf("%s slot %d: %w", d.name, i, err)
			}
		}
	}
	return nil
}
