package booking

import (
	"context"
	"errors"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const appointmentCols = `id, provider_id, rendering_provider_id, billing_provider_npi, rendering_provider_npi,
	payer_id, patient_first_name, patient_last_name, patient_email, patient_phone, patient_dob,
	start_time, end_time, duration_minutes, modality, status, confirmation_code, source,
	cancellation_reason, notes, created_at, updated_at`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ProviderID, &a.RenderingProviderID, &a.BillingProviderNPI, &a.RenderingProviderNPI,
		&a.PayerID, &a.PatientFirstName, &a.PatientLastName, &a.PatientEmail, &a.PatientPhone, &a.PatientDOB,
		&a.StartTime, &a.EndTime, &a.DurationMinutes, &a.Modality, &a.Status, &a.ConfirmationCode, &a.Source,
		&a.CancellationReason, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, provider_id, rendering_provider_id, billing_provider_npi,
			rendering_provider_npi, payer_id, patient_first_name, patient_last_name, patient_email,
			patient_phone, patient_dob, start_time, end_time, duration_minutes, modality, status,
			source, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		a.ID, a.ProviderID, a.RenderingProviderID, a.BillingProviderNPI,
		a.RenderingProviderNPI, a.PayerID, a.PatientFirstName, a.PatientLastName, a.PatientEmail,
		a.PatientPhone, a.PatientDOB, a.StartTime, a.EndTime, a.DurationMinutes, a.Modality, a.Status,
		a.Source, a.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return a, err
}

func (r *repoPG) SetConfirmationCode(ctx context.Context, id uuid.UUID, code string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET confirmation_code = $2, updated_at = NOW() WHERE id = $1`, id, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $2, cancellation_reason = COALESCE($3, cancellation_reason),
			updated_at = NOW()
		WHERE id = $1`, id, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *repoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE (provider_id = $1 OR rendering_provider_id = $1)
		  AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`,
		providerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, r.scanAppointment)
}

func (r *repoPG) ListByPatientEmail(ctx context.Context, email string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE LOWER(patient_email) = LOWER($1)
		ORDER BY start_time DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, r.scanAppointment)
}

func collect(rows pgx.Rows, scan func(pgx.Row) (*Appointment, error)) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
