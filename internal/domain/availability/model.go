package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exception types. custom_hours and partial_block carry an explicit time
// window that replaces the weekly template for the date; unavailable and
// vacation mask the date entirely.
const (
	ExceptionUnavailable     = "unavailable"
	ExceptionCustomHours     = "custom_hours"
	ExceptionPartialBlock    = "partial_block"
	ExceptionVacation        = "vacation"
	ExceptionRecurringChange = "recurring_change"
)

// Recurrence patterns for authored exceptions. Recurrence exists only at
// write time; stored exceptions are always concrete dated rows.
const (
	RecurDaily   = "daily"
	RecurWeekly  = "weekly"
	RecurMonthly = "monthly"
)

// TimeBlock is one availability window within a day. Times are local
// wall-clock "15:04" strings in the provider's practice timezone.
type TimeBlock struct {
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// DaySchedule is the resolved availability for one day of week.
type DaySchedule struct {
	DayOfWeek int         `json:"day_of_week"`
	Available bool        `json:"available"`
	Blocks    []TimeBlock `json:"blocks"`
}

// WeeklyTemplate holds one DaySchedule per day of week, indexed 0 (Sunday)
// through 6 (Saturday).
type WeeklyTemplate [7]DaySchedule

// Exception maps to the schedule_exception table. Rows are always concrete
// single dates; recurring authorship is expanded before insert.
type Exception struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ProviderID uuid.UUID  `db:"provider_id" json:"provider_id"`
	Date       time.Time  `db:"exception_date" json:"exception_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	Type       string     `db:"exception_type" json:"exception_type"`
	StartTime  *string    `db:"start_time" json:"start_time,omitempty"`
	EndTime    *string    `db:"end_time" json:"end_time,omitempty"`
	Note       *string    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ExceptionInput is the write-side shape, carrying the recurrence rule that
// expansion turns into concrete Exception rows.
type ExceptionInput struct {
	ProviderID         uuid.UUID  `json:"provider_id"`
	Date               time.Time  `json:"exception_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Type               string     `json:"exception_type"`
	StartTime          *string    `json:"start_time,omitempty"`
	EndTime            *string    `json:"end_time,omitempty"`
	Note               *string    `json:"note,omitempty"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrencePattern  string     `json:"recurrence_pattern,omitempty"`
	RecurrenceInterval int        `json:"recurrence_interval,omitempty"`
	RecurrenceDays     []int      `json:"recurrence_days,omitempty"`
	RecurrenceCount    *int       `json:"recurrence_count,omitempty"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date,omitempty"`
}

// BookingPolicy maps to the booking_policy table, keyed by provider.
type BookingPolicy struct {
	ProviderID                   uuid.UUID `db:"provider_id" json:"provider_id"`
	MaxDailyAppointments         int       `db:"max_daily_appointments" json:"max_daily_appointments"`
	BookingBufferMinutes         int       `db:"booking_buffer_minutes" json:"booking_buffer_minutes"`
	AdvanceBookingDays           int       `db:"advance_booking_days" json:"advance_booking_days"`
	MinimumNoticeHours           int       `db:"minimum_notice_hours" json:"minimum_notice_hours"`
	CancellationNoticeHours      int       `db:"cancellation_notice_hours" json:"cancellation_notice_hours"`
	TelehealthEnabled            bool      `db:"telehealth_enabled" json:"telehealth_enabled"`
	InPersonEnabled              bool      `db:"in_person_enabled" json:"in_person_enabled"`
	EmergencySlotsPerDay         int       `db:"emergency_slots_per_day" json:"emergency_slots_per_day"`
	EmergencySlotDurationMinutes int       `db:"emergency_slot_duration_minutes" json:"emergency_slot_duration_minutes"`
	SelfBookingEnabled           bool      `db:"self_booking_enabled" json:"self_booking_enabled"`
	ThirdPartyBookingEnabled     bool      `db:"third_party_booking_enabled" json:"third_party_booking_enabled"`
	CaseManagerBookingEnabled    bool      `db:"case_manager_booking_enabled" json:"case_manager_booking_enabled"`
	AcceptsNewPatients           bool      `db:"accepts_new_patients" json:"accepts_new_patients"`
	NewPatientAppointmentTypes   []string  `db:"new_patient_appointment_types" json:"new_patient_appointment_types"`
	AutoConfirmAppointments      bool      `db:"auto_confirm_appointments" json:"auto_confirm_appointments"`
	RequireInsuranceVerification bool      `db:"require_insurance_verification" json:"require_insurance_verification"`
}

// TimeSlot is a concrete candidate start/end pair produced by the slot
// generator.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailableSlot is the derived, never-persisted value returned to callers.
type AvailableSlot struct {
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	ProviderID   uuid.UUID `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	Duration     int       `json:"duration_minutes"`
	Available    bool      `json:"is_available"`
}

// ValidationError collects every violated rule for a rejected write.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// parseClock parses a "15:04" wall-clock string anchored to the given date.
func parseClock(date time.Time, hm string) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
