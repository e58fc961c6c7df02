package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TemplateRepository interface {
	GetBlocks(ctx context.Context, providerID uuid.UUID) ([]TimeBlock, error)
	// ReplaceBlocks deletes every stored block for the provider and inserts
	// the given set in one transaction.
	ReplaceBlocks(ctx context.Context, providerID uuid.UUID, blocks []TimeBlock) error
}

type ExceptionRepository interface {
	ListByDateRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Exception, error)
	// CreateBatch inserts all expanded instances transactionally as a single
	// batch and returns the ids in insertion order.
	CreateBatch(ctx context.Context, excs []*Exception) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PolicyRepository interface {
	Get(ctx context.Context, providerID uuid.UUID) (*BookingPolicy, error)
	Upsert(ctx context.Context, p *BookingPolicy) error
}

// AppointmentReader supplies the booked-appointment starts consumed by the
// collision filter. Cancelled appointments are excluded.
type AppointmentReader interface {
	ListBookedStarts(ctx context.Context, providerID uuid.UUID, date time.Time) ([]time.Time, error)
}
