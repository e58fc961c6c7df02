package availability

import (
	"fmt"
	"time"
)

// maxRecurrenceCycles is the hard safety cap on recurrence expansion.
const maxRecurrenceCycles = 52

var validExceptionTypes = map[string]bool{
	ExceptionUnavailable:     true,
	ExceptionCustomHours:     true,
	ExceptionPartialBlock:    true,
	ExceptionVacation:        true,
	ExceptionRecurringChange: true,
}

var validRecurrencePatterns = map[string]bool{
	RecurDaily:   true,
	RecurWeekly:  true,
	RecurMonthly: true,
}

// ValidateExceptionInput checks every write-time rule and collects all
// violations rather than failing on the first. A non-nil return means the
// whole write is rejected with nothing inserted.
func ValidateExceptionInput(in ExceptionInput) *ValidationError {
	var violations []string

	if in.Date.IsZero() {
		violations = append(violations, "exception_date is required")
	}
	if !validExceptionTypes[in.Type] {
		violations = append(violations, fmt.Sprintf("invalid exception_type: %q", in.Type))
	}
	if in.EndDate != nil && !in.Date.IsZero() && in.EndDate.Before(in.Date) {
		violations = append(violations, "end_date must be on or after exception_date")
	}

	if in.Type == ExceptionCustomHours || in.Type == ExceptionPartialBlock {
		switch {
		case in.StartTime == nil || in.EndTime == nil:
			violations = append(violations, fmt.Sprintf("%s exceptions require start_time and end_time", in.Type))
		default:
			start, errS := time.Parse("15:04", *in.StartTime)
			end, errE := time.Parse("15:04", *in.EndTime)
			if errS != nil || errE != nil {
				violations = append(violations, "start_time and end_time must be HH:MM")
			} else if !start.Before(end) {
				violations = append(violations, "start_time must be before end_time")
			}
		}
	}

	if in.IsRecurring {
		if !validRecurrencePatterns[in.RecurrencePattern] {
			violations = append(violations, fmt.Sprintf("invalid recurrence_pattern: %q", in.RecurrencePattern))
		}
		if in.RecurrenceCount == nil && in.RecurrenceEndDate == nil {
			violations = append(violations, "recurring exceptions require recurrence_count or recurrence_end_date")
		}
		if in.RecurrenceCount != nil && *in.RecurrenceCount <= 0 {
			violations = append(violations, "recurrence_count must be positive")
		}
		for _, d := range in.RecurrenceDays {
			if d < 0 || d > 6 {
				violations = append(violations, fmt.Sprintf("recurrence_days entry out of range: %d", d))
				break
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// ExpandRecurrence turns an authored exception into its concrete dated
// instances. Non-recurring input yields exactly one instance. Expansion
// steps cycle by cycle from the base date, bounded by the instance count,
// the recurrence end date, and the hard safety cap, whichever comes first.
// Weekly patterns with explicit weekday selection fan each cycle out into
// one instance per selected weekday on or after the cycle anchor. Instances
// copy the parent's type, times, and note; a parent spanning multiple days
// propagates the same day-span to every instance.
func ExpandRecurrence(in ExceptionInput) []*Exception {
	if !in.IsRecurring {
		return []*Exception{instanceAt(in, in.Date)}
	}

	interval := in.RecurrenceInterval
	if interval <= 0 {
		interval = 1
	}

	limit := -1
	if in.RecurrenceCount != nil {
		limit = *in.RecurrenceCount
	}

	withinEnd := func(d time.Time) bool {
		return in.RecurrenceEndDate == nil || !d.After(*in.RecurrenceEndDate)
	}

	var instances []*Exception
	done := func() bool { return limit >= 0 && len(instances) >= limit }

	for cycle := 0; cycle < maxRecurrenceCycles && !done(); cycle++ {
		var anchor time.Time
		switch in.RecurrencePattern {
		case RecurDaily:
			anchor = in.Date.AddDate(0, 0, cycle*interval)
		case RecurWeekly:
			anchor = in.Date.AddDate(0, 0, cycle*interval*7)
		case RecurMonthly:
			anchor = in.Date.AddDate(0, cycle*interval, 0)
		default:
			return instances
		}

		if !withinEnd(anchor) {
			break
		}

		if in.RecurrencePattern == RecurWeekly && len(in.RecurrenceDays) > 0 {
			weekStart := anchor.AddDate(0, 0, -int(anchor.Weekday()))
			for day := 0; day < 7 && !done(); day++ {
				if !containsDay(in.RecurrenceDays, day) {
					continue
				}
				date := weekStart.AddDate(0, 0, day)
				if date.Before(anchor) || !withinEnd(date) {
					continue
				}
				instances = append(instances, instanceAt(in, date))
			}
			continue
		}

		instances = append(instances, instanceAt(in, anchor))
	}

	return instances
}

func instanceAt(in ExceptionInput, date time.Time) *Exception {
	exc := &Exception{
		ProviderID: in.ProviderID,
		Date:       date,
		Type:       in.Type,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Note:       in.Note,
	}
	if in.EndDate != nil {
		span := in.EndDate.Sub(in.Date)
		end := date.Add(span)
		exc.EndDate = &end
	}
	return exc
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
