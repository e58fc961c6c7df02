package provider

import (
	"time"

	"github.com/google/uuid"
)

// Provider roles. Residents carry a supervising attending used for
// supervised billing assignment.
const (
	RoleAttending = "attending"
	RoleResident  = "resident"
)

// Provider maps to the provider table.
type Provider struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	NPI                   string     `db:"npi" json:"npi"`
	DisplayName           string     `db:"display_name" json:"display_name"`
	Credentials           *string    `db:"credentials" json:"credentials,omitempty"`
	Role                  string     `db:"role" json:"role"`
	SupervisingProviderID *uuid.UUID `db:"supervising_provider_id" json:"supervising_provider_id,omitempty"`
	AcceptingNewPatients  bool       `db:"accepting_new_patients" json:"accepting_new_patients"`
	GenerallyAvailable    bool       `db:"generally_available" json:"generally_available"`
	Timezone              string     `db:"timezone" json:"timezone"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}
