package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/domain/payer"
	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/domain/provider"
)

var validModalities = map[string]bool{
	ModalityTelehealth: true,
	ModalityInPerson:   true,
}

var validSources = map[string]bool{
	SourceSelf:        true,
	SourceThirdParty:  true,
	SourceCaseManager: true,
}

// BillingResolver decides which clinician bills for a visit. Satisfied by
// the provider service.
type BillingResolver interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	ResolveBillingProvider(ctx context.Context, providerID uuid.UUID) (*provider.Provider, *provider.Provider, error)
}

// PayerLookup is the slice of the payer service booking needs.
type PayerLookup interface {
	GetPayer(ctx context.Context, id uuid.UUID) (*payer.Payer, error)
}

type Service struct {
	appointments Repository
	providers    BillingResolver
	payers       PayerLookup
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(appointments Repository, providers BillingResolver, payers PayerLookup, logger zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		providers:    providers,
		payers:       payers,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateAppointment validates the request, assigns billing and rendering
// providers, and persists the appointment. When the payer requires attending
// supervision the appointment is billed under the attending and the selected
// provider becomes the rendering clinician.
//
// The confirmation code is attached in a second write after the row exists;
// if that write fails the appointment stands without a code and the failure
// is logged for later repair.
func (s *Service) CreateAppointment(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = SourceSelf
	}

	var pyr *payer.Payer
	if req.PayerID != nil {
		p, err := s.payers.GetPayer(ctx, *req.PayerID)
		if err != nil {
			return nil, ErrPayerNotFound
		}
		pyr = p
	}

	appt := &Appointment{
		PayerID:          req.PayerID,
		PatientFirstName: req.PatientFirstName,
		PatientLastName:  req.PatientLastName,
		PatientEmail:     req.PatientEmail,
		PatientPhone:     req.PatientPhone,
		PatientDOB:       req.PatientDOB,
		StartTime:        req.StartTime,
		EndTime:          req.StartTime.Add(time.Duration(req.DurationMinutes) * time.Minute),
		DurationMinutes:  req.DurationMinutes,
		Modality:         req.Modality,
		Status:           StatusPending,
		Source:           req.Source,
		Notes:            req.Notes,
	}

	if pyr != nil && pyr.RequiresAttending {
		billing, rendering, err := s.providers.ResolveBillingProvider(ctx, req.ProviderID)
		if err != nil {
			return nil, ErrProviderNotFound
		}
		appt.ProviderID = billing.ID
		appt.BillingProviderNPI = billing.NPI
		if rendering != nil {
			appt.RenderingProviderID = &rendering.ID
			appt.RenderingProviderNPI = &rendering.NPI
		}
	} else {
		// Without supervision the selected provider bills for themselves,
		// even when they have a supervisor on file.
		selected, err := s.providers.GetProvider(ctx, req.ProviderID)
		if err != nil {
			return nil, ErrProviderNotFound
		}
		appt.ProviderID = selected.ID
		appt.BillingProviderNPI = selected.NPI
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	result := &BookingResult{AppointmentID: appt.ID}

	code, err := generateConfirmationCode()
	if err == nil {
		err = s.appointments.SetConfirmationCode(ctx, appt.ID, code)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("failed to attach confirmation code")
		return result, nil
	}
	result.ConfirmationCode = code
	return result, nil
}

func (s *Service) validate(req BookingRequest) error {
	if req.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if req.PatientFirstName == "" || req.PatientLastName == "" {
		return fmt.Errorf("patient name is required")
	}
	if req.PatientEmail == "" {
		return fmt.Errorf("patient_email is required")
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if req.Modality == "" || !validModalities[req.Modality] {
		return fmt.Errorf("invalid modality: %s", req.Modality)
	}
	if req.Source != "" && !validSources[req.Source] {
		return fmt.Errorf("invalid source: %s", req.Source)
	}
	if req.StartTime.Before(s.now()) {
		return ErrPastStartTime
	}
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// CancelAppointment marks the appointment cancelled, which releases its slot
// for rebooking.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) error {
	var r *string
	if reason != "" {
		r = &reason
	}
	return s.appointments.UpdateStatus(ctx, id, StatusCancelled, r)
}

func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appointments.UpdateStatus(ctx, id, StatusConfirmed, nil)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error) {
	return s.appointments.ListByProvider(ctx, providerID, date)
}

func (s *Service) ListByPatientEmail(ctx context.Context, email string) ([]*Appointment, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	return s.appointments.ListByPatientEmail(ctx, email)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateConfirmationCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
