package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("provider not found")

var validRoles = map[string]bool{
	RoleAttending: true,
	RoleResident:  true,
}

type Service struct {
	providers Repository
}

func NewService(providers Repository) *Service {
	return &Service{providers: providers}
}

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if p.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	if p.NPI == "" {
		return fmt.Errorf("npi is required")
	}
	if p.Role == "" {
		p.Role = RoleAttending
	}
	if !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	if p.Role == RoleResident && p.SupervisingProviderID == nil {
		return fmt.Errorf("supervising_provider_id is required for residents")
	}
	if p.Timezone == "" {
		p.Timezone = "America/Denver"
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	if p.Role != "" && !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	return s.providers.Update(ctx, p)
}

func (s *Service) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return s.providers.Delete(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

func (s *Service) ListGenerallyAvailable(ctx context.Context) ([]*Provider, error) {
	return s.providers.ListGenerallyAvailable(ctx)
}

func (s *Service) SearchProviders(ctx context.Context, params map[string]string, limit, offset int) ([]*Provider, int, error) {
	return s.providers.Search(ctx, params, limit, offset)
}

// ResolveBillingProvider returns the billing provider and, when the given
// provider practices under a supervising attending, the rendering provider.
// For providers without a supervisor the provider bills for themselves and
// the rendering provider is nil.
func (s *Service) ResolveBillingProvider(ctx context.Context, providerID uuid.UUID) (*Provider, *Provider, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving provider %s: %w", providerID, err)
	}
	if p.SupervisingProviderID == nil {
		return p, nil, nil
	}
	attending, err := s.providers.GetByID(ctx, *p.SupervisingProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving supervising provider for %s: %w", providerID, err)
	}
	return attending, p, nil
}
