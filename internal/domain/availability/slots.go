package availability

import (
	"sort"
	"time"
)

// GenerateSlots emits bookable candidates inside the window: starting at
// windowStart, each slot spans durationMinutes and the cursor advances by
// durationMinutes + bufferMinutes. A candidate is included only when it fits
// entirely inside the window, so no partial trailing slot is produced.
// Callers must reject overnight windows (end before start) before calling.
func GenerateSlots(windowStart, windowEnd time.Time, durationMinutes, bufferMinutes int) []TimeSlot {
	if durationMinutes <= 0 {
		return nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	step := duration + time.Duration(bufferMinutes)*time.Minute

	var slots []TimeSlot
	for cursor := windowStart; ; cursor = cursor.Add(step) {
		end := cursor.Add(duration)
		if end.After(windowEnd) {
			break
		}
		slots = append(slots, TimeSlot{Start: cursor, End: end})
	}
	return slots
}

// FilterBooked removes candidates colliding with existing appointments and
// enforces the per-day cap. Collision is by exact start-time match; the
// generator's grid and the stored appointments' grid share the same
// duration. After collision removal, at most dailyCap minus the number of
// existing appointments survive, earliest first.
func FilterBooked(candidates []TimeSlot, bookedStarts []time.Time, dailyCap int) []TimeSlot {
	remaining := dailyCap - len(bookedStarts)
	if remaining <= 0 {
		return nil
	}

	booked := make(map[int64]bool, len(bookedStarts))
	for _, b := range bookedStarts {
		booked[b.Unix()] = true
	}

	open := make([]TimeSlot, 0, len(candidates))
	for _, c := range candidates {
		if !booked[c.Start.Unix()] {
			open = append(open, c)
		}
	}

	sort.Slice(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })
	if len(open) > remaining {
		open = open[:remaining]
	}
	return open
}
