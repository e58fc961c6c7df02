package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/domain/provider"
)

// ProviderDirectory is the slice of the provider service the orchestrator
// needs: identity lookup and the generally-available roster.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	ListGenerallyAvailable(ctx context.Context) ([]*provider.Provider, error)
}

// ProviderAvailability pairs a provider with their open slots for one date.
type ProviderAvailability struct {
	Provider *provider.Provider `json:"provider"`
	Slots    []AvailableSlot    `json:"slots"`
}

type Service struct {
	templates    TemplateRepository
	exceptions   ExceptionRepository
	policies     PolicyRepository
	appointments AppointmentReader
	providers    ProviderDirectory
	defaults     Defaults
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(
	templates TemplateRepository,
	exceptions ExceptionRepository,
	policies PolicyRepository,
	appointments AppointmentReader,
	providers ProviderDirectory,
	defaults Defaults,
	logger zerolog.Logger,
) *Service {
	return &Service{
		templates:    templates,
		exceptions:   exceptions,
		policies:     policies,
		appointments: appointments,
		providers:    providers,
		defaults:     defaults,
		logger:       logger,
		now:          time.Now,
	}
}

// -- Weekly template --

// GetWeeklyTemplate returns the provider's recurring availability, one entry
// per day 0-6. A provider with no stored blocks gets the configured default
// so onboarding providers are never completely unbookable; a store failure
// degrades to the same default.
func (s *Service) GetWeeklyTemplate(ctx context.Context, providerID uuid.UUID) WeeklyTemplate {
	blocks, err := s.templates.GetBlocks(ctx, providerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider_id", providerID.String()).
			Msg("weekly template load failed, using defaults")
		return s.defaults.WeeklyTemplate
	}
	if len(blocks) == 0 {
		return s.defaults.WeeklyTemplate
	}

	var tmpl WeeklyTemplate
	for day := 0; day < 7; day++ {
		tmpl[day] = DaySchedule{DayOfWeek: day}
	}
	for _, b := range blocks {
		if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
			continue
		}
		tmpl[b.DayOfWeek].Available = true
		tmpl[b.DayOfWeek].Blocks = append(tmpl[b.DayOfWeek].Blocks, b)
	}
	return tmpl
}

// SaveWeeklyTemplate validates and stores the provider's blocks with replace
// semantics: every stored block is deleted and the new set inserted in one
// transaction.
func (s *Service) SaveWeeklyTemplate(ctx context.Context, providerID uuid.UUID, blocks []TimeBlock) error {
	if verr := validateBlocks(blocks); verr != nil {
		return verr
	}
	return s.templates.ReplaceBlocks(ctx, providerID, blocks)
}

func validateBlocks(blocks []TimeBlock) *ValidationError {
	var violations []string
	type window struct{ start, end time.Time }
	byDay := make(map[int][]window)

	for _, b := range blocks {
		if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
			violations = append(violations, fmt.Sprintf("day_of_week out of range: %d", b.DayOfWeek))
			continue
		}
		start, errS := time.Parse("15:04", b.StartTime)
		end, errE := time.Parse("15:04", b.EndTime)
		if errS != nil || errE != nil {
			violations = append(violations, fmt.Sprintf("day %d: times must be HH:MM", b.DayOfWeek))
			continue
		}
		if !start.Before(end) {
			violations = append(violations, fmt.Sprintf("day %d: start_time must be before end_time", b.DayOfWeek))
			continue
		}
		byDay[b.DayOfWeek] = append(byDay[b.DayOfWeek], window{start, end})
	}

	for day, windows := range byDay {
		sort.Slice(windows, func(i, j int) bool { return windows[i].start.Before(windows[j].start) })
		for i := 1; i < len(windows); i++ {
			if windows[i].start.Before(windows[i-1].end) {
				violations = append(violations, fmt.Sprintf("day %d: windows overlap", day))
				break
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// -- Exceptions --

func (s *Service) GetExceptions(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Exception, error) {
	return s.exceptions.ListByDateRange(ctx, providerID, from, to)
}

// CreateException validates the input as a whole, expands any recurrence
// into concrete dated instances, and inserts them as a single batch. Returns
// the id of every created row.
func (s *Service) CreateException(ctx context.Context, in ExceptionInput) ([]uuid.UUID, error) {
	if verr := ValidateExceptionInput(in); verr != nil {
		return nil, verr
	}
	instances := ExpandRecurrence(in)
	ids, err := s.exceptions.CreateBatch(ctx, instances)
	if err != nil {
		return nil, fmt.Errorf("inserting exceptions: %w", err)
	}
	return ids, nil
}

func (s *Service) DeleteException(ctx context.Context, id uuid.UUID) error {
	return s.exceptions.Delete(ctx, id)
}

// -- Booking policy --

// GetBookingPolicy returns the stored policy or the configured default when
// none exists. Absence is not an error.
func (s *Service) GetBookingPolicy(ctx context.Context, providerID uuid.UUID) BookingPolicy {
	p, err := s.policies.Get(ctx, providerID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().Err(err).Str("provider_id", providerID.String()).
				Msg("booking policy load failed, using defaults")
		}
		def := s.defaults.Policy
		def.ProviderID = providerID
		return def
	}
	return *p
}

func (s *Service) SaveBookingPolicy(ctx context.Context, p *BookingPolicy) error {
	var violations []string
	if p.ProviderID == uuid.Nil {
		violations = append(violations, "provider_id is required")
	}
	if p.MaxDailyAppointments <= 0 {
		violations = append(violations, "max_daily_appointments must be positive")
	}
	if p.BookingBufferMinutes < 0 {
		violations = append(violations, "booking_buffer_minutes must not be negative")
	}
	if p.AdvanceBookingDays <= 0 {
		violations = append(violations, "advance_booking_days must be positive")
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return s.policies.Upsert(ctx, p)
}

// -- Orchestration --

// GetAvailableSlots computes the open slots for a provider across a date
// range. Per date: an unavailable or vacation exception masks the date
// entirely; an exception carrying an explicit window replaces the weekly
// template as the sole window; otherwise every template block for that
// weekday feeds the generator. A failure resolving one date skips that date
// and continues. After aggregation the per-date cap is applied once more
// across the full result so it holds even when multiple windows contributed
// candidates.
func (s *Service) GetAvailableSlots(ctx context.Context, providerID uuid.UUID, from, to time.Time, durationMinutes int) ([]AvailableSlot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	prov, err := s.providers.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("resolving provider %s: %w", providerID, err)
	}

	policy := s.GetBookingPolicy(ctx, providerID)
	tmpl := s.GetWeeklyTemplate(ctx, providerID)

	now := s.now()
	earliestStart := now.Add(time.Duration(policy.MinimumNoticeHours) * time.Hour)
	horizon := now.AddDate(0, 0, policy.AdvanceBookingDays)
	if to.After(horizon) {
		to = horizon
	}

	excs, err := s.exceptions.ListByDateRange(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading exceptions: %w", err)
	}
	// A multi-day exception governs every date in [Date, EndDate], so fan it
	// out across its span when building the per-date map.
	excByDate := make(map[string][]*Exception)
	for _, e := range excs {
		last := e.Date
		if e.EndDate != nil && e.EndDate.After(last) {
			last = *e.EndDate
		}
		for d := e.Date; !d.After(last); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			excByDate[key] = append(excByDate[key], e)
		}
	}

	var result []AvailableSlot
	allowed := make(map[string]int)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		open, existing, err := s.slotsForDate(ctx, providerID, tmpl, policy, excByDate[key], d, durationMinutes, earliestStart)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("provider_id", providerID.String()).
				Str("date", key).
				Msg("skipping date in availability computation")
			continue
		}
		allowed[key] = policy.MaxDailyAppointments - existing
		for _, slot := range open {
			result = append(result, AvailableSlot{
				Date:         key,
				StartTime:    slot.Start.Format("15:04"),
				ProviderID:   providerID,
				ProviderName: prov.DisplayName,
				Duration:     durationMinutes,
				Available:    true,
			})
		}
	}

	// Global cap reconciliation across the aggregated result.
	counts := make(map[string]int)
	capped := result[:0]
	for _, slot := range result {
		if counts[slot.Date] >= allowed[slot.Date] {
			continue
		}
		counts[slot.Date]++
		capped = append(capped, slot)
	}
	return capped, nil
}

func (s *Service) slotsForDate(
	ctx context.Context,
	providerID uuid.UUID,
	tmpl WeeklyTemplate,
	policy BookingPolicy,
	excs []*Exception,
	date time.Time,
	durationMinutes int,
	earliestStart time.Time,
) ([]TimeSlot, int, error) {
	var override *Exception
	for _, e := range excs {
		switch e.Type {
		case ExceptionUnavailable, ExceptionVacation:
			return nil, 0, nil
		case ExceptionCustomHours, ExceptionPartialBlock:
			if e.StartTime != nil && e.EndTime != nil {
				override = e
			}
		}
	}

	type window struct{ start, end time.Time }
	var windows []window

	if override != nil {
		start, err := parseClock(date, *override.StartTime)
		if err != nil {
			return nil, 0, err
		}
		end, err := parseClock(date, *override.EndTime)
		if err != nil {
			return nil, 0, err
		}
		if !start.Before(end) {
			return nil, 0, fmt.Errorf("exception window end %s not after start %s", *override.EndTime, *override.StartTime)
		}
		windows = append(windows, window{start, end})
	} else {
		day := tmpl[int(date.Weekday())]
		if !day.Available {
			return nil, 0, nil
		}
		for _, b := range day.Blocks {
			start, err := parseClock(date, b.StartTime)
			if err != nil {
				return nil, 0, err
			}
			end, err := parseClock(date, b.EndTime)
			if err != nil {
				return nil, 0, err
			}
			if !start.Before(end) {
				return nil, 0, fmt.Errorf("template window end %s not after start %s", b.EndTime, b.StartTime)
			}
			windows = append(windows, window{start, end})
		}
	}

	var candidates []TimeSlot
	for _, w := range windows {
		candidates = append(candidates, GenerateSlots(w.start, w.end, durationMinutes, policy.BookingBufferMinutes)...)
	}

	// Minimum-notice filter: same-day slots inside the notice horizon are
	// not offered.
	filtered := candidates[:0]
	for _, c := range candidates {
		if !c.Start.Before(earliestStart) {
			filtered = append(filtered, c)
		}
	}

	booked, err := s.appointments.ListBookedStarts(ctx, providerID, date)
	if err != nil {
		return nil, 0, fmt.Errorf("loading booked appointments: %w", err)
	}

	return FilterBooked(filtered, booked, policy.MaxDailyAppointments), len(booked), nil
}

// GetAvailableProviders runs the single-provider algorithm for one date
// across every generally-available provider and keeps those with at least
// one open slot, sorted by display name. Payer network gating happens
// upstream of this routine.
func (s *Service) GetAvailableProviders(ctx context.Context, date time.Time, durationMinutes int) ([]ProviderAvailability, error) {
	provs, err := s.providers.ListGenerallyAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}

	var results []ProviderAvailability
	for _, p := range provs {
		slots, err := s.GetAvailableSlots(ctx, p.ID, date, date, durationMinutes)
		if err != nil {
			s.logger.Warn().Err(err).Str("provider_id", p.ID.String()).
				Msg("skipping provider in availability computation")
			continue
		}
		if len(slots) == 0 {
			continue
		}
		results = append(results, ProviderAvailability{Provider: p, Slots: slots})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Provider.DisplayName < results[j].Provider.DisplayName
	})
	return results, nil
}
