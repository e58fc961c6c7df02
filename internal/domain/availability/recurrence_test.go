package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateExceptionInput_CollectsAllViolations(t *testing.T) {
	in := ExceptionInput{
		Type:        ExceptionCustomHours,
		IsRecurring: true,
	}
	verr := ValidateExceptionInput(in)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	// Missing date, missing custom-hours times, missing pattern, missing
	// termination: all collected in one rejection.
	if len(verr.Violations) < 4 {
		t.Errorf("expected at least 4 violations, got %d: %v", len(verr.Violations), verr.Violations)
	}
}

func TestValidateExceptionInput_IncompleteRecurrence(t *testing.T) {
	in := ExceptionInput{
		ProviderID:        uuid.New(),
		Date:              date(2026, time.March, 2),
		Type:              ExceptionUnavailable,
		IsRecurring:       true,
		RecurrencePattern: RecurWeekly,
	}
	verr := ValidateExceptionInput(in)
	if verr == nil {
		t.Fatal("expected error for recurrence without count or end date")
	}
}

func TestValidateExceptionInput_TimeOrdering(t *testing.T) {
	in := ExceptionInput{
		ProviderID: uuid.New(),
		Date:       date(2026, time.March, 2),
		Type:       ExceptionCustomHours,
		StartTime:  strPtr("11:00"),
		EndTime:    strPtr("10:00"),
	}
	verr := ValidateExceptionInput(in)
	if verr == nil {
		t.Fatal("expected error for start_time after end_time")
	}
}

func TestValidateExceptionInput_EndDateOrdering(t *testing.T) {
	end := date(2026, time.March, 1)
	in := ExceptionInput{
		ProviderID: uuid.New(),
		Date:       date(2026, time.March, 2),
		EndDate:    &end,
		Type:       ExceptionVacation,
	}
	verr := ValidateExceptionInput(in)
	if verr == nil {
		t.Fatal("expected error for end_date before exception_date")
	}
}

func TestValidateExceptionInput_Valid(t *testing.T) {
	in := ExceptionInput{
		ProviderID: uuid.New(),
		Date:       date(2026, time.March, 2),
		Type:       ExceptionCustomHours,
		StartTime:  strPtr("10:00"),
		EndTime:    strPtr("11:00"),
	}
	if verr := ValidateExceptionInput(in); verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
}

func TestExpandRecurrence_SingleInstance(t *testing.T) {
	in := ExceptionInput{
		ProviderID: uuid.New(),
		Date:       date(2026, time.March, 2),
		Type:       ExceptionUnavailable,
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if !instances[0].Date.Equal(in.Date) {
		t.Errorf("expected date %v, got %v", in.Date, instances[0].Date)
	}
}

func TestExpandRecurrence_WeeklyDayFanOut(t *testing.T) {
	// Anchored on Monday 2026-03-02, weekly on Mon/Wed/Fri, six instances.
	in := ExceptionInput{
		ProviderID:         uuid.New(),
		Date:               date(2026, time.March, 2),
		Type:               ExceptionUnavailable,
		IsRecurring:        true,
		RecurrencePattern:  RecurWeekly,
		RecurrenceInterval: 1,
		RecurrenceDays:     []int{1, 3, 5},
		RecurrenceCount:    intPtr(6),
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 6 {
		t.Fatalf("expected 6 instances, got %d", len(instances))
	}

	want := []time.Time{
		date(2026, time.March, 2),  // Mon
		date(2026, time.March, 4),  // Wed
		date(2026, time.March, 6),  // Fri
		date(2026, time.March, 9),  // Mon
		date(2026, time.March, 11), // Wed
		date(2026, time.March, 13), // Fri
	}
	for i, w := range want {
		if !instances[i].Date.Equal(w) {
			t.Errorf("instance %d: expected %v, got %v", i, w, instances[i].Date)
		}
	}
}

func TestExpandRecurrence_DailyWithEndDate(t *testing.T) {
	end := date(2026, time.March, 5)
	in := ExceptionInput{
		ProviderID:        uuid.New(),
		Date:              date(2026, time.March, 2),
		Type:              ExceptionUnavailable,
		IsRecurring:       true,
		RecurrencePattern: RecurDaily,
		RecurrenceEndDate: &end,
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 4 {
		t.Fatalf("expected 4 instances (Mar 2-5), got %d", len(instances))
	}
	last := instances[len(instances)-1]
	if !last.Date.Equal(end) {
		t.Errorf("expected last instance on %v, got %v", end, last.Date)
	}
}

func TestExpandRecurrence_MonthlyInterval(t *testing.T) {
	in := ExceptionInput{
		ProviderID:         uuid.New(),
		Date:               date(2026, time.March, 15),
		Type:               ExceptionVacation,
		IsRecurring:        true,
		RecurrencePattern:  RecurMonthly,
		RecurrenceInterval: 2,
		RecurrenceCount:    intPtr(3),
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(instances))
	}
	if !instances[1].Date.Equal(date(2026, time.May, 15)) {
		t.Errorf("expected second instance on 2026-05-15, got %v", instances[1].Date)
	}
	if !instances[2].Date.Equal(date(2026, time.July, 15)) {
		t.Errorf("expected third instance on 2026-07-15, got %v", instances[2].Date)
	}
}

func TestExpandRecurrence_SafetyCap(t *testing.T) {
	// No end date and a count above the cap: expansion stops at the cap.
	in := ExceptionInput{
		ProviderID:        uuid.New(),
		Date:              date(2026, time.March, 2),
		Type:              ExceptionUnavailable,
		IsRecurring:       true,
		RecurrencePattern: RecurDaily,
		RecurrenceCount:   intPtr(500),
	}
	instances := ExpandRecurrence(in)
	if len(instances) != maxRecurrenceCycles {
		t.Fatalf("expected %d instances at safety cap, got %d", maxRecurrenceCycles, len(instances))
	}
}

func TestExpandRecurrence_PreservesDaySpan(t *testing.T) {
	end := date(2026, time.March, 4) // two days after the base date
	in := ExceptionInput{
		ProviderID:        uuid.New(),
		Date:              date(2026, time.March, 2),
		EndDate:           &end,
		Type:              ExceptionVacation,
		IsRecurring:       true,
		RecurrencePattern: RecurWeekly,
		RecurrenceCount:   intPtr(2),
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	second := instances[1]
	if second.EndDate == nil {
		t.Fatal("expected end date preserved on expanded instance")
	}
	if span := second.EndDate.Sub(second.Date); span != 48*time.Hour {
		t.Errorf("expected 2-day span preserved, got %v", span)
	}
}

func TestExpandRecurrence_CopiesWindowAndNote(t *testing.T) {
	in := ExceptionInput{
		ProviderID:        uuid.New(),
		Date:              date(2026, time.March, 2),
		Type:              ExceptionCustomHours,
		StartTime:         strPtr("10:00"),
		EndTime:           strPtr("11:00"),
		Note:              strPtr("clinic meeting"),
		IsRecurring:       true,
		RecurrencePattern: RecurWeekly,
		RecurrenceCount:   intPtr(3),
	}
	instances := ExpandRecurrence(in)
	if len(instances) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(instances))
	}
	for i, inst := range instances {
		if inst.Type != ExceptionCustomHours {
			t.Errorf("instance %d: type not copied", i)
		}
		if inst.StartTime == nil || *inst.StartTime != "10:00" {
			t.Errorf("instance %d: start_time not copied", i)
		}
		if inst.Note == nil || *inst.Note != "clinic meeting" {
			t.Errorf("instance %d: note not copied", i)
		}
	}
}
