package availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/domain/provider"
)

type mockTemplateRepo struct {
	blocks map[uuid.UUID][]TimeBlock
	err    error
}

func (m *mockTemplateRepo) GetBlocks(_ context.Context, providerID uuid.UUID) ([]TimeBlock, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.blocks[providerID], nil
}

func (m *mockTemplateRepo) ReplaceBlocks(_ context.Context, providerID uuid.UUID, blocks []TimeBlock) error {
	if m.blocks == nil {
		m.blocks = make(map[uuid.UUID][]TimeBlock)
	}
	m.blocks[providerID] = blocks
	return nil
}

type mockExceptionRepo struct {
	excs    []*Exception
	created [][]*Exception
}

func (m *mockExceptionRepo) ListByDateRange(_ context.Context, providerID uuid.UUID, from, to time.Time) ([]*Exception, error) {
	var items []*Exception
	for _, e := range m.excs {
		if e.ProviderID != providerID {
			continue
		}
		last := e.Date
		if e.EndDate != nil && e.EndDate.After(last) {
			last = *e.EndDate
		}
		if e.Date.After(to) || last.Before(from) {
			continue
		}
		items = append(items, e)
	}
	return items, nil
}

func (m *mockExceptionRepo) CreateBatch(_ context.Context, excs []*Exception) ([]uuid.UUID, error) {
	m.created = append(m.created, excs)
	var ids []uuid.UUID
	for _, e := range excs {
		e.ID = uuid.New()
		m.excs = append(m.excs, e)
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (m *mockExceptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, e := range m.excs {
		if e.ID == id {
			m.excs = append(m.excs[:i], m.excs[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockPolicyRepo struct {
	policies map[uuid.UUID]*BookingPolicy
}

func (m *mockPolicyRepo) Get(_ context.Context, providerID uuid.UUID) (*BookingPolicy, error) {
	p, ok := m.policies[providerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPolicyRepo) Upsert(_ context.Context, p *BookingPolicy) error {
	if m.policies == nil {
		m.policies = make(map[uuid.UUID]*BookingPolicy)
	}
	m.policies[p.ProviderID] = p
	return nil
}

type mockApptReader struct {
	starts map[string][]time.Time // providerID|date -> starts
}

func apptKey(providerID uuid.UUID, date time.Time) string {
	return providerID.String() + "|" + date.Format("2006-01-02")
}

func (m *mockApptReader) ListBookedStarts(_ context.Context, providerID uuid.UUID, date time.Time) ([]time.Time, error) {
	return m.starts[apptKey(providerID, date)], nil
}

type mockDirectory struct {
	providers map[uuid.UUID]*provider.Provider
}

func (m *mockDirectory) GetProvider(_ context.Context, id uuid.UUID) (*provider.Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	return p, nil
}

func (m *mockDirectory) ListGenerallyAvailable(_ context.Context) ([]*provider.Provider, error) {
	var items []*provider.Provider
	for _, p := range m.providers {
		if p.GenerallyAvailable {
			items = append(items, p)
		}
	}
	return items, nil
}

type testEnv struct {
	svc        *Service
	templates  *mockTemplateRepo
	exceptions *mockExceptionRepo
	policies   *mockPolicyRepo
	appts      *mockApptReader
	dir        *mockDirectory
}

func newTestEnv() *testEnv {
	env := &testEnv{
		templates:  &mockTemplateRepo{blocks: make(map[uuid.UUID][]TimeBlock)},
		exceptions: &mockExceptionRepo{},
		policies:   &mockPolicyRepo{policies: make(map[uuid.UUID]*BookingPolicy)},
		appts:      &mockApptReader{starts: make(map[string][]time.Time)},
		dir:        &mockDirectory{providers: make(map[uuid.UUID]*provider.Provider)},
	}
	env.svc = NewService(env.templates, env.exceptions, env.policies, env.appts, env.dir, DefaultConfig(), zerolog.Nop())
	env.svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return env
}

func (env *testEnv) addProvider(name string) *provider.Provider {
	p := &provider.Provider{
		ID:                 uuid.New(),
		DisplayName:        name,
		NPI:                "1234567890",
		Role:               provider.RoleAttending,
		GenerallyAvailable: true,
	}
	env.dir.providers[p.ID] = p
	return p
}

// Monday.
var testDate = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func TestGetWeeklyTemplate_DefaultsWhenUnset(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")

	tmpl := env.svc.GetWeeklyTemplate(context.Background(), p.ID)
	if !tmpl[1].Available {
		t.Error("expected Monday available in default template")
	}
	if len(tmpl[1].Blocks) != 2 {
		t.Fatalf("expected 2 default blocks for Monday, got %d", len(tmpl[1].Blocks))
	}
	if tmpl[0].Available || tmpl[6].Available {
		t.Error("expected weekends unavailable in default template")
	}
}

func TestGetWeeklyTemplate_DefaultsOnStoreFailure(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.templates.err = fmt.Errorf("connection refused")

	tmpl := env.svc.GetWeeklyTemplate(context.Background(), p.ID)
	if !tmpl[1].Available {
		t.Error("expected default template on store failure")
	}
}

func TestSaveWeeklyTemplate_RejectsOverlap(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")

	err := env.svc.SaveWeeklyTemplate(context.Background(), p.ID, []TimeBlock{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "11:00", EndTime: "14:00"},
	})
	if err == nil {
		t.Fatal("expected error for overlapping windows")
	}
	if len(env.templates.blocks[p.ID]) != 0 {
		t.Error("expected no blocks written on rejected save")
	}
}

func TestGetBookingPolicy_DefaultsWhenMissing(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")

	policy := env.svc.GetBookingPolicy(context.Background(), p.ID)
	if policy.MaxDailyAppointments != 20 {
		t.Errorf("expected default cap 20, got %d", policy.MaxDailyAppointments)
	}
	if policy.BookingBufferMinutes != 15 {
		t.Errorf("expected default buffer 15, got %d", policy.BookingBufferMinutes)
	}
	if policy.ProviderID != p.ID {
		t.Error("expected default policy stamped with provider id")
	}
}

func TestCreateException_InvalidWritesNothing(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")

	_, err := env.svc.CreateException(context.Background(), ExceptionInput{
		ProviderID:        p.ID,
		Date:              testDate,
		Type:              ExceptionUnavailable,
		IsRecurring:       true,
		RecurrencePattern: RecurWeekly,
		// no count, no end date
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(env.exceptions.created) != 0 {
		t.Error("expected zero rows written on rejected input")
	}
}

func TestCreateException_ExpandsAndInserts(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")

	count := 6
	ids, err := env.svc.CreateException(context.Background(), ExceptionInput{
		ProviderID:         p.ID,
		Date:               time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), // Monday
		Type:               ExceptionUnavailable,
		IsRecurring:        true,
		RecurrencePattern:  RecurWeekly,
		RecurrenceInterval: 1,
		RecurrenceDays:     []int{1, 3, 5},
		RecurrenceCount:    &count,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 6 {
		t.Fatalf("expected 6 ids, got %d", len(ids))
	}

	excs, err := env.svc.GetExceptions(context.Background(), p.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(excs) != 6 {
		t.Fatalf("expected 6 stored exceptions, got %d", len(excs))
	}
	for _, e := range excs {
		wd := e.Date.Weekday()
		if wd != time.Monday && wd != time.Wednesday && wd != time.Friday {
			t.Errorf("unexpected weekday %v", wd)
		}
	}
}

func TestGetAvailableSlots_UnavailableExceptionMasks(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.exceptions.excs = append(env.exceptions.excs, &Exception{
		ID: uuid.New(), ProviderID: p.ID, Date: testDate, Type: ExceptionUnavailable,
	})

	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, testDate, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected 0 slots on masked date, got %d", len(slots))
	}
}

func TestGetAvailableSlots_MultiDayVacationMasksSpan(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	// Vacation Monday through Wednesday; the middle day must be masked too.
	wednesday := testDate.AddDate(0, 0, 2)
	env.exceptions.excs = append(env.exceptions.excs, &Exception{
		ID: uuid.New(), ProviderID: p.ID, Date: testDate, EndDate: &wednesday,
		Type: ExceptionVacation,
	})

	tuesday := testDate.AddDate(0, 0, 1)
	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, tuesday, tuesday, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected 0 slots on a date inside the vacation span, got %d", len(slots))
	}

	thursday := testDate.AddDate(0, 0, 3)
	slots, err = env.svc.GetAvailableSlots(context.Background(), p.ID, thursday, thursday, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Error("expected slots on the first day after the vacation span")
	}
}

func TestGetAvailableSlots_CustomHoursReplacesTemplate(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.exceptions.excs = append(env.exceptions.excs, &Exception{
		ID: uuid.New(), ProviderID: p.ID, Date: testDate, Type: ExceptionCustomHours,
		StartTime: strPtr("10:00"), EndTime: strPtr("11:00"),
	})
	// Zero buffer so the 10-11 window yields exactly one 60-minute slot.
	env.policies.policies[p.ID] = &BookingPolicy{
		ProviderID: p.ID, MaxDailyAppointments: 20, AdvanceBookingDays: 90,
		MinimumNoticeHours: 24,
	}

	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, testDate, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected exactly 1 slot from the override window, got %d", len(slots))
	}
	if slots[0].StartTime != "10:00" {
		t.Errorf("expected slot at 10:00, got %s", slots[0].StartTime)
	}
}

func TestGetAvailableSlots_DailyCapWithExisting(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.policies.policies[p.ID] = &BookingPolicy{
		ProviderID: p.ID, MaxDailyAppointments: 3, AdvanceBookingDays: 90,
		MinimumNoticeHours: 24,
	}
	env.appts.starts[apptKey(p.ID, testDate)] = []time.Time{
		time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
	}

	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, testDate, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) > 1 {
		t.Fatalf("expected at most 1 slot with cap 3 and 2 existing, got %d", len(slots))
	}
}

func TestGetAvailableSlots_SkipsFailingDate(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.exceptions.excs = append(env.exceptions.excs, &Exception{
		ID: uuid.New(), ProviderID: p.ID, Date: testDate, Type: ExceptionCustomHours,
		StartTime: strPtr("25:99"), EndTime: strPtr("26:00"),
	})

	// Monday has a malformed exception; Tuesday should still resolve.
	tuesday := testDate.AddDate(0, 0, 1)
	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, tuesday, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots from the remaining date")
	}
	for _, s := range slots {
		if s.Date == testDate.Format("2006-01-02") {
			t.Errorf("expected no slots from the failing date, got one at %s", s.StartTime)
		}
	}
}

func TestGetAvailableSlots_MinimumNoticeExcludesNearSlots(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	// Request starts the same day as "now": everything inside the 24-hour
	// notice window is withheld.
	env.svc.now = func() time.Time { return time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC) }

	tuesday := testDate.AddDate(0, 0, 1)
	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, tuesday, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots on the following day")
	}
	for _, s := range slots {
		if s.Date == testDate.Format("2006-01-02") {
			t.Errorf("expected same-day slots excluded by minimum notice, got %s", s.StartTime)
		}
	}
}

func TestGetAvailableSlots_HorizonClampsRange(t *testing.T) {
	env := newTestEnv()
	p := env.addProvider("Dr. Kim")
	env.policies.policies[p.ID] = &BookingPolicy{
		ProviderID: p.ID, MaxDailyAppointments: 20, AdvanceBookingDays: 7,
		MinimumNoticeHours: 24,
	}

	farOut := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	slots, err := env.svc.GetAvailableSlots(context.Background(), p.ID, testDate, farOut, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	horizon := env.svc.now().AddDate(0, 0, 7).Format("2006-01-02")
	for _, s := range slots {
		if s.Date > horizon {
			t.Errorf("expected no slots past the booking horizon, got %s", s.Date)
		}
	}
}

func TestGetAvailableSlots_UnknownProvider(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.GetAvailableSlots(context.Background(), uuid.New(), testDate, testDate, 60)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestGetAvailableProviders_SortedByName(t *testing.T) {
	env := newTestEnv()
	zoe := env.addProvider("Dr. Zoe")
	abel := env.addProvider("Dr. Abel")
	busy := env.addProvider("Dr. Busy")
	env.exceptions.excs = append(env.exceptions.excs, &Exception{
		ID: uuid.New(), ProviderID: busy.ID, Date: testDate, Type: ExceptionUnavailable,
	})

	results, err := env.svc.GetAvailableProviders(context.Background(), testDate, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 providers with availability, got %d", len(results))
	}
	if results[0].Provider.ID != abel.ID || results[1].Provider.ID != zoe.ID {
		t.Errorf("expected providers sorted by display name, got %s then %s",
			results[0].Provider.DisplayName, results[1].Provider.DisplayName)
	}
	for _, r := range results {
		if len(r.Slots) == 0 {
			t.Errorf("provider %s kept without slots", r.Provider.DisplayName)
		}
	}
}
