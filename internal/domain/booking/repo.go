package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	SetConfirmationCode(ctx context.Context, id uuid.UUID, code string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByPatientEmail(ctx context.Context, email string) ([]*Appointment, error)
}
