package payer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var validCredentialingStatuses = map[string]bool{
	CredApproved:   true,
	CredWaiting:    true,
	CredInProgress: true,
	CredNotStarted: true,
	CredBlocked:    true,
	CredOnPause:    true,
	CredDenied:     true,
}

type Service struct {
	payers Repository
	now    func() time.Time
}

func NewService(payers Repository) *Service {
	return &Service{payers: payers, now: time.Now}
}

func (s *Service) CreatePayer(ctx context.Context, p *Payer) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.CredentialingStatus == "" {
		p.CredentialingStatus = CredNotStarted
	}
	if !validCredentialingStatuses[p.CredentialingStatus] {
		return fmt.Errorf("invalid credentialing_status: %s", p.CredentialingStatus)
	}
	return s.payers.Create(ctx, p)
}

func (s *Service) GetPayer(ctx context.Context, id uuid.UUID) (*Payer, error) {
	return s.payers.GetByID(ctx, id)
}

func (s *Service) UpdatePayer(ctx context.Context, p *Payer) error {
	if !validCredentialingStatuses[p.CredentialingStatus] {
		return fmt.Errorf("invalid credentialing_status: %s", p.CredentialingStatus)
	}
	return s.payers.Update(ctx, p)
}

func (s *Service) ListPayers(ctx context.Context, limit, offset int) ([]*Payer, int, error) {
	return s.payers.List(ctx, limit, offset)
}

// SearchPayers returns name matches classified by acceptance, ordered so
// bookable payers come first: active, then future, then not-accepted, and
// alphabetically within each group.
func (s *Service) SearchPayers(ctx context.Context, q string) ([]ClassifiedPayer, error) {
	payers, err := s.payers.SearchByName(ctx, q)
	if err != nil {
		return nil, err
	}
	today := s.now()
	results := make([]ClassifiedPayer, 0, len(payers))
	for _, p := range payers {
		results = append(results, ClassifiedPayer{
			Payer:      p,
			Acceptance: ClassifyAcceptance(p, today),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := statusRank(results[i].Acceptance.Status), statusRank(results[j].Acceptance.Status)
		if ri != rj {
			return ri < rj
		}
		return results[i].Payer.Name < results[j].Payer.Name
	})
	return results, nil
}
