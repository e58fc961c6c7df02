package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	providers map[uuid.UUID]*Provider
}

func newMockRepo() *mockRepo {
	return &mockRepo{providers: make(map[uuid.UUID]*Provider)}
}

func (m *mockRepo) Create(_ context.Context, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.providers[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Provider) error {
	m.providers[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.providers, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Provider, int, error) {
	var items []*Provider
	for _, p := range m.providers {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListGenerallyAvailable(_ context.Context) ([]*Provider, error) {
	var items []*Provider
	for _, p := range m.providers {
		if p.GenerallyAvailable {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Provider, int, error) {
	return m.List(context.Background(), limit, offset)
}

func TestCreateProvider_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.CreateProvider(context.Background(), &Provider{NPI: "1234567890"})
	if err == nil {
		t.Error("expected error for missing display_name")
	}

	err = svc.CreateProvider(context.Background(), &Provider{DisplayName: "Dr. Kim"})
	if err == nil {
		t.Error("expected error for missing npi")
	}

	err = svc.CreateProvider(context.Background(), &Provider{
		DisplayName: "Dr. Kim", NPI: "1234567890", Role: "intern",
	})
	if err == nil {
		t.Error("expected error for invalid role")
	}

	err = svc.CreateProvider(context.Background(), &Provider{
		DisplayName: "Dr. Kim", NPI: "1234567890", Role: RoleResident,
	})
	if err == nil {
		t.Error("expected error for resident without supervisor")
	}
}

func TestCreateProvider_Defaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Provider{DisplayName: "Dr. Kim", NPI: "1234567890"}
	if err := svc.CreateProvider(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != RoleAttending {
		t.Errorf("expected default role attending, got %s", p.Role)
	}
	if p.Timezone == "" {
		t.Error("expected default timezone")
	}
}

func TestResolveBillingProvider_Resident(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	attending := &Provider{DisplayName: "Dr. Attending", NPI: "1111111111", Role: RoleAttending}
	if err := svc.CreateProvider(context.Background(), attending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resident := &Provider{
		DisplayName: "Dr. Resident", NPI: "2222222222", Role: RoleResident,
		SupervisingProviderID: &attending.ID,
	}
	if err := svc.CreateProvider(context.Background(), resident); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	billing, rendering, err := svc.ResolveBillingProvider(context.Background(), resident.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if billing.ID != attending.ID {
		t.Errorf("expected billing provider %s, got %s", attending.ID, billing.ID)
	}
	if rendering == nil || rendering.ID != resident.ID {
		t.Errorf("expected rendering provider %s, got %v", resident.ID, rendering)
	}
}

func TestResolveBillingProvider_Attending(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	attending := &Provider{DisplayName: "Dr. Attending", NPI: "1111111111", Role: RoleAttending}
	if err := svc.CreateProvider(context.Background(), attending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	billing, rendering, err := svc.ResolveBillingProvider(context.Background(), attending.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if billing.ID != attending.ID {
		t.Errorf("expected billing provider %s, got %s", attending.ID, billing.ID)
	}
	if rendering != nil {
		t.Errorf("expected nil rendering provider, got %v", rendering)
	}
}

func TestResolveBillingProvider_UnknownProvider(t *testing.T) {
	svc := NewService(newMockRepo())
	_, _, err := svc.ResolveBillingProvider(context.Background(), uuid.New())
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
