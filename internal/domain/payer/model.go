package payer

import (
	"time"

	"github.com/google/uuid"
)

// Credentialing statuses mirror the credentialing workflow's vocabulary
// verbatim; they arrive from an external system and are read-only here.
const (
	CredApproved   = "Approved"
	CredWaiting    = "Waiting on them"
	CredInProgress = "In progress"
	CredNotStarted = "Not started"
	CredBlocked    = "Blocked"
	CredOnPause    = "On pause"
	CredDenied     = "X Denied or perm. blocked"
)

// Acceptance statuses returned by classification.
const (
	StatusActive      = "active"
	StatusFuture      = "future"
	StatusNotAccepted = "not-accepted"
)

type Payer struct {
	ID                         uuid.UUID  `json:"id" db:"id"`
	Name                       string     `json:"name" db:"name"`
	PayerType                  string     `json:"payer_type" db:"payer_type"`
	CredentialingStatus        string     `json:"credentialing_status" db:"credentialing_status"`
	EffectiveDate              *time.Time `json:"effective_date,omitempty" db:"effective_date"`
	ProjectedEffectiveDate     *time.Time `json:"projected_effective_date,omitempty" db:"projected_effective_date"`
	RequiresAttending          bool       `json:"requires_attending" db:"requires_attending"`
	RequiresIndividualContract bool       `json:"requires_individual_contract" db:"requires_individual_contract"`
	StateCoverage              []string   `json:"state_coverage" db:"state_coverage"`
	Notes                      *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt                  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at" db:"updated_at"`
}

// Acceptance is the classification result attached to a payer when it is
// surfaced to patients.
type Acceptance struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ClassifiedPayer is a payer plus its acceptance classification, the shape
// returned by search.
type ClassifiedPayer struct {
	Payer      *Payer     `json:"payer"`
	Acceptance Acceptance `json:"acceptance"`
}
