package availability

import "github.com/google/uuid"

// Defaults holds the fallback schedule and policy applied when a provider
// has not configured hours or constraints yet. Injected at construction so
// tests can override without touching package state.
type Defaults struct {
	WeeklyTemplate WeeklyTemplate
	Policy         BookingPolicy
}

// DefaultWeeklyTemplate returns the onboarding fallback: weekdays split into
// a morning and an afternoon window, weekends unavailable.
func DefaultWeeklyTemplate() WeeklyTemplate {
	var tmpl WeeklyTemplate
	for day := 0; day < 7; day++ {
		tmpl[day] = DaySchedule{DayOfWeek: day}
	}
	for day := 1; day <= 5; day++ {
		tmpl[day] = DaySchedule{
			DayOfWeek: day,
			Available: true,
			Blocks: []TimeBlock{
				{DayOfWeek: day, StartTime: "09:00", EndTime: "12:00"},
				{DayOfWeek: day, StartTime: "13:00", EndTime: "17:00"},
			},
		}
	}
	return tmpl
}

// DefaultPolicy returns the booking constraints used when no policy row
// exists for a provider.
func DefaultPolicy(providerID uuid.UUID) BookingPolicy {
	return BookingPolicy{
		ProviderID:                   providerID,
		MaxDailyAppointments:         20,
		BookingBufferMinutes:         15,
		AdvanceBookingDays:           90,
		MinimumNoticeHours:           24,
		CancellationNoticeHours:      24,
		TelehealthEnabled:            true,
		InPersonEnabled:              true,
		EmergencySlotsPerDay:         2,
		EmergencySlotDurationMinutes: 30,
		SelfBookingEnabled:           true,
		ThirdPartyBookingEnabled:     true,
		CaseManagerBookingEnabled:    true,
		AcceptsNewPatients:           true,
		NewPatientAppointmentTypes:   []string{"intake"},
		AutoConfirmAppointments:      false,
		RequireInsuranceVerification: true,
	}
}

// DefaultConfig bundles both fallbacks.
func DefaultConfig() Defaults {
	return Defaults{
		WeeklyTemplate: DefaultWeeklyTemplate(),
		Policy:         DefaultPolicy(uuid.Nil),
	}
}
