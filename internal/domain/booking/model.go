package booking

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

const (
	ModalityTelehealth = "telehealth"
	ModalityInPerson   = "in_person"
)

const (
	SourceSelf        = "self"
	SourceThirdParty  = "third_party"
	SourceCaseManager = "case_manager"
)

// Appointment is the persisted booking. ProviderID is the billing provider
// of record; when the visit is performed under supervision the clinician who
// actually sees the patient is RenderingProviderID and both NPIs are stored
// for the billing export.
type Appointment struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	ProviderID           uuid.UUID  `json:"provider_id" db:"provider_id"`
	RenderingProviderID  *uuid.UUID `json:"rendering_provider_id,omitempty" db:"rendering_provider_id"`
	BillingProviderNPI   string     `json:"billing_provider_npi" db:"billing_provider_npi"`
	RenderingProviderNPI *string    `json:"rendering_provider_npi,omitempty" db:"rendering_provider_npi"`
	PayerID              *uuid.UUID `json:"payer_id,omitempty" db:"payer_id"`
	PatientFirstName     string     `json:"patient_first_name" db:"patient_first_name"`
	PatientLastName      string     `json:"patient_last_name" db:"patient_last_name"`
	PatientEmail         string     `json:"patient_email" db:"patient_email"`
	PatientPhone         *string    `json:"patient_phone,omitempty" db:"patient_phone"`
	PatientDOB           *time.Time `json:"patient_dob,omitempty" db:"patient_dob"`
	StartTime            time.Time  `json:"start_time" db:"start_time"`
	EndTime              time.Time  `json:"end_time" db:"end_time"`
	DurationMinutes      int        `json:"duration_minutes" db:"duration_minutes"`
	Modality             string     `json:"modality" db:"modality"`
	Status               string     `json:"status" db:"status"`
	ConfirmationCode     *string    `json:"confirmation_code,omitempty" db:"confirmation_code"`
	Source               string     `json:"source" db:"source"`
	CancellationReason   *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	Notes                *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// BookingRequest is the inbound shape for creating an appointment. The
// provider here is the one the patient selected; billing assignment happens
// in the service.
type BookingRequest struct {
	ProviderID       uuid.UUID  `json:"provider_id"`
	PayerID          *uuid.UUID `json:"payer_id,omitempty"`
	PatientFirstName string     `json:"patient_first_name"`
	PatientLastName  string     `json:"patient_last_name"`
	PatientEmail     string     `json:"patient_email"`
	PatientPhone     *string    `json:"patient_phone,omitempty"`
	PatientDOB       *time.Time `json:"patient_dob,omitempty"`
	StartTime        time.Time  `json:"start_time"`
	DurationMinutes  int        `json:"duration_minutes"`
	Modality         string     `json:"modality"`
	Source           string     `json:"source"`
	Notes            *string    `json:"notes,omitempty"`
}

// BookingResult is returned to the caller after a successful create.
type BookingResult struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
}
