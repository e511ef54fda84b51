package service

import (
	"context"
	"fmt"
	"time"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
)

// WizardService keeps multi-step booking drafts in the state store. Drafts
// are per account, expire with the store's TTL and never touch the booking
// tables; only Submit on the BookingService writes anything.
type WizardService struct {
	stateRepo domain.StateRepository
	repo      domain.Repository
	logger    *zerolog.Logger
}

func NewWizardService(stateRepo domain.StateRepository, repo domain.Repository, logger *zerolog.Logger) *WizardService {
	return &WizardService{
		stateRepo: stateRepo,
		repo:      repo,
		logger:    logger,
	}
}

// StartDraft begins a wizard for a departure, replacing any previous draft.
func (s *WizardService) StartDraft(ctx context.Context, identity models.Identity, departureID string) (*models.WizardDraft, error) {
	if identity.AccountID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.repo.GetDeparture(ctx, departureID); err != nil {
		return nil, fmt.Errorf("resolve departure: %w", err)
	}

	draft := &models.WizardDraft{
		AccountID:   identity.AccountID,
		CurrentStep: models.StepSelectRooms,
		DepartureID: departureID,
		UpdatedAt:   time.Now(),
	}
	if err := s.stateRepo.SetDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SetAllocation stores the room quota and pre-creates passenger slots in the
// fixed quad, triple, double, single order.
func (s *WizardService) SetAllocation(ctx context.Context, accountID string, alloc models.RoomAllocation) (*models.WizardDraft, error) {
	draft, err := s.requireDraft(ctx, accountID)
	if err != nil {
		return nil, err
	}

	slots, err := ExpandAllocation(alloc)
	if err != nil {
		return nil, err
	}

	draft.Allocation = alloc
	draft.Passengers = slots
	draft.CurrentStep = models.StepPassengerData
	draft.UpdatedAt = time.Now()
	if err := s.stateRepo.SetDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SetPassengers fills in passenger identities and moves the wizard to
// review. Slot count must match the allocation when one was chosen.
func (s *WizardService) SetPassengers(ctx context.Context, accountID string, passengers []models.Passenger, notes string) (*models.WizardDraft, error) {
	draft, err := s.requireDraft(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if total := draft.Allocation.Total(); total > 0 && len(passengers) != total {
		return nil, fmt.Errorf("%w: allocation expects %d passengers, got %d", ErrInvalidInput, total, len(passengers))
	}
	if err := ValidatePassengers(passengers); err != nil {
		return nil, err
	}

	draft.Passengers = passengers
	draft.Notes = notes
	draft.CurrentStep = models.StepReview
	draft.UpdatedAt = time.Now()
	if err := s.stateRepo.SetDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *WizardService) GetDraft(ctx context.Context, accountID string) (*models.WizardDraft, error) {
	return s.stateRepo.GetDraft(ctx, accountID)
}

// ClearDraft abandons the wizard. No booking side effects to undo.
func (s *WizardService) ClearDraft(ctx context.Context, accountID string) error {
	return s.stateRepo.ClearDraft(ctx, accountID)
}

func (s *WizardService) requireDraft(ctx context.Context, accountID string) (*models.WizardDraft, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	draft, err := s.stateRepo.GetDraft(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: no wizard draft in progress", ErrInvalidInput)
	}
	return draft, nil
}
