package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Template Repository ===========

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository { return &templateRepoPG{pool: pool} }

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *templateRepoPG) GetBlocks(ctx context.Context, providerID uuid.UUID) ([]TimeBlock, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT day_of_week, start_time, end_time FROM schedule_block
		WHERE provider_id = $1 ORDER BY day_of_week, start_time`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var blocks []TimeBlock
	for rows.Next() {
		var b TimeBlock
		if err := rows.Scan(&b.DayOfWeek, &b.StartTime, &b.EndTime); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (r *templateRepoPG) ReplaceBlocks(ctx context.Context, providerID uuid.UUID, blocks []TimeBlock) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_block WHERE provider_id = $1`, providerID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	for _, b := range blocks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedule_block (id, provider_id, day_of_week, start_time, end_time)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New(), providerID, b.DayOfWeek, b.StartTime, b.EndTime); err != nil {
			return fmt.Errorf("insert block: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// =========== Exception Repository ===========

type exceptionRepoPG struct{ pool *pgxpool.Pool }

func NewExceptionRepoPG(pool *pgxpool.Pool) ExceptionRepository { return &exceptionRepoPG{pool: pool} }

func (r *exceptionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const exceptionCols = `id, provider_id, exception_date, end_date, exception_type, start_time, end_time, note, created_at`

func (r *exceptionRepoPG) scanException(row pgx.Row) (*Exception, error) {
	var e Exception
	err := row.Scan(&e.ID, &e.ProviderID, &e.Date, &e.EndDate, &e.Type, &e.StartTime, &e.EndTime, &e.Note, &e.CreatedAt)
	return &e, err
}

func (r *exceptionRepoPG) ListByDateRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Exception, error) {
	// Multi-day rows overlap the range when they start before its end and
	// their span (end_date, or the start date for single-day rows) reaches it.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+exceptionCols+` FROM schedule_exception
		WHERE provider_id = $1 AND exception_date <= $3
		  AND COALESCE(end_date, exception_date) >= $2
		ORDER BY exception_date ASC`, providerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Exception
	for rows.Next() {
		e, err := r.scanException(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *exceptionRepoPG) CreateBatch(ctx context.Context, excs []*Exception) ([]uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, len(excs))
	for _, e := range excs {
		e.ID = uuid.New()
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedule_exception (id, provider_id, exception_date, end_date, exception_type, start_time, end_time, note)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.ID, e.ProviderID, e.Date, e.EndDate, e.Type, e.StartTime, e.EndTime, e.Note); err != nil {
			return nil, fmt.Errorf("insert exception: %w", err)
		}
		ids = append(ids, e.ID)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *exceptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_exception WHERE id = $1`, id)
	return err
}

// =========== Policy Repository ===========

type policyRepoPG struct{ pool *pgxpool.Pool }

func NewPolicyRepoPG(pool *pgxpool.Pool) PolicyRepository { return &policyRepoPG{pool: pool} }

func (r *policyRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const policyCols = `provider_id, max_daily_appointments, booking_buffer_minutes, advance_booking_days,
	minimum_notice_hours, cancellation_notice_hours, telehealth_enabled, in_person_enabled,
	emergency_slots_per_day, emergency_slot_duration_minutes, self_booking_enabled,
	third_party_booking_enabled, case_manager_booking_enabled, accepts_new_patients,
	new_patient_appointment_types, auto_confirm_appointments, require_insurance_verification`

func (r *policyRepoPG) Get(ctx context.Context, providerID uuid.UUID) (*BookingPolicy, error) {
	var p BookingPolicy
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+policyCols+` FROM booking_policy WHERE provider_id = $1`, providerID).
		Scan(&p.ProviderID, &p.MaxDailyAppointments, &p.BookingBufferMinutes, &p.AdvanceBookingDays,
			&p.MinimumNoticeHours, &p.CancellationNoticeHours, &p.TelehealthEnabled, &p.InPersonEnabled,
			&p.EmergencySlotsPerDay, &p.EmergencySlotDurationMinutes, &p.SelfBookingEnabled,
			&p.ThirdPartyBookingEnabled, &p.CaseManagerBookingEnabled, &p.AcceptsNewPatients,
			&p.NewPatientAppointmentTypes, &p.AutoConfirmAppointments, &p.RequireInsuranceVerification)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *policyRepoPG) Upsert(ctx context.Context, p *BookingPolicy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking_policy (`+policyCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (provider_id) DO UPDATE SET
			max_daily_appointments = EXCLUDED.max_daily_appointments,
			booking_buffer_minutes = EXCLUDED.booking_buffer_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			minimum_notice_hours = EXCLUDED.minimum_notice_hours,
			cancellation_notice_hours = EXCLUDED.cancellation_notice_hours,
			telehealth_enabled = EXCLUDED.telehealth_enabled,
			in_person_enabled = EXCLUDED.in_person_enabled,
			emergency_slots_per_day = EXCLUDED.emergency_slots_per_day,
			emergency_slot_duration_minutes = EXCLUDED.emergency_slot_duration_minutes,
			self_booking_enabled = EXCLUDED.self_booking_enabled,
			third_party_booking_enabled = EXCLUDED.third_party_booking_enabled,
			case_manager_booking_enabled = EXCLUDED.case_manager_booking_enabled,
			accepts_new_patients = EXCLUDED.accepts_new_patients,
			new_patient_appointment_types = EXCLUDED.new_patient_appointment_types,
			auto_confirm_appointments = EXCLUDED.auto_confirm_appointments,
			require_insurance_verification = EXCLUDED.require_insurance_verification,
			updated_at = NOW()`,
		p.ProviderID, p.MaxDailyAppointments, p.BookingBufferMinutes, p.AdvanceBookingDays,
		p.MinimumNoticeHours, p.CancellationNoticeHours, p.TelehealthEnabled, p.InPersonEnabled,
		p.EmergencySlotsPerDay, p.EmergencySlotDurationMinutes, p.SelfBookingEnabled,
		p.ThirdPartyBookingEnabled, p.CaseManagerBookingEnabled, p.AcceptsNewPatients,
		p.NewPatientAppointmentTypes, p.AutoConfirmAppointments, p.RequireInsuranceVerification)
	return err
}

// =========== Appointment Reader ===========

type appointmentReaderPG struct{ pool *pgxpool.Pool }

func NewAppointmentReaderPG(pool *pgxpool.Pool) AppointmentReader {
	return &appointmentReaderPG{pool: pool}
}

func (r *appointmentReaderPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *appointmentReaderPG) ListBookedStarts(ctx context.Context, providerID uuid.UUID, date time.Time) ([]time.Time, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT start_time FROM appointment
		WHERE (provider_id = $1 OR rendering_provider_id = $1)
		  AND start_time >= $2 AND start_time < $3
		  AND status NOT IN ('cancelled')
		ORDER BY start_time ASC`, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var starts []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		starts = append(starts, t)
	}
	return starts, rows.Err()
}
