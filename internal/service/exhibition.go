package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

// ExhibitionService drives an exhibition through its lifecycle once planning is done:
// going live, completion and cancellation. Settlement lives in SettlementService.
type ExhibitionService struct {
	repo     ExhibitionRepository
	dirRepo  DirectoryRepository
	owners   OwnerRepository
	settings Settings
	now      func() time.Time
}

func NewExhibitionService(repo ExhibitionRepository, dirRepo DirectoryRepository, owners OwnerRepository, settings Settings) *ExhibitionService {
	return &ExhibitionService{
		repo:     repo,
		dirRepo:  dirRepo,
		owners:   owners,
		settings: settings,
		now:      time.Now,
	}
}

func (s *ExhibitionService) Create(ctx context.Context, actor domain.Actor, ex domain.Exhibition) (domain.Exhibition, error) {
	org, err := s.dirRepo.FindOrganization(ctx, ex.OrganizationID)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.dirRepo.FindOrganization -> %w", err)
	}

	if err = authz.Check(actor, authz.OwnerChain{OrganizationOwnerID: org.OwnerID}, authz.ManageExhibition); err != nil {
		return domain.Exhibition{}, err
	}

	if ex.EndDate.Before(ex.StartDate) {
		return domain.Exhibition{}, domain.Invalid("end date is before start date")
	}
	if ex.TotalAvailableBooths < 0 || ex.MaxBoothsPerUniversity < 0 || ex.MaxBoothsPerProvider < 0 {
		return domain.Exhibition{}, domain.Invalid("booth counts cannot be negative")
	}
	if ex.StandardBoothSqm <= 0 {
		ex.StandardBoothSqm = s.settings.StandardBoothSqm
	}

	ex.ID = 0
	ex.Status = domain.ExhibitionDraft
	ex.BoothsReserved = 0
	ex.ActualVisitors = 0
	ex.ScheduleJSON = nil
	ex.FinalizationDeadline = nil

	created, err := s.repo.Create(ctx, ex)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ExhibitionService) Get(ctx context.Context, id uint) (domain.Exhibition, error) {
	ex, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ex, nil
}

func (s *ExhibitionService) ListByOrganization(ctx context.Context, organizationID uint) ([]domain.Exhibition, error) {
	if _, err := s.dirRepo.FindOrganization(ctx, organizationID); err != nil {
		return nil, fmt.Errorf("s.dirRepo.FindOrganization -> %w", err)
	}

	exhibitions, err := s.repo.List(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return exhibitions, nil
}

// Start opens a settled exhibition to visitors. At least one university or school must have
// confirmed its participation.
func (s *ExhibitionService) Start(ctx context.Context, actor domain.Actor, id uint) (domain.Exhibition, error) {
	ex, err := s.load(ctx, actor, id, authz.ManageExhibition)
	if err != nil {
		return domain.Exhibition{}, err
	}

	if err = requireStatus(ex, domain.ExhibitionConfirmed); err != nil {
		return domain.Exhibition{}, err
	}

	return s.transition(ctx, id, func(state domain.ExhibitionState) (domain.ExhibitionChange, error) {
		ex := state.Exhibition
		if err := requireStatus(ex, domain.ExhibitionConfirmed); err != nil {
			return domain.ExhibitionChange{}, err
		}
		if !hasConfirmedInstitution(state.Participations) {
			return domain.ExhibitionChange{}, ErrNoConfirmedParticipants
		}

		ex.Status = domain.ExhibitionActive
		return domain.ExhibitionChange{Exhibition: ex}, nil
	})
}

func (s *ExhibitionService) Complete(ctx context.Context, actor domain.Actor, id uint) (domain.Exhibition, error) {
	ex, err := s.load(ctx, actor, id, authz.ManageExhibition)
	if err != nil {
		return domain.Exhibition{}, err
	}

	if err = requireStatus(ex, domain.ExhibitionActive); err != nil {
		return domain.Exhibition{}, err
	}

	return s.transition(ctx, id, func(state domain.ExhibitionState) (domain.ExhibitionChange, error) {
		ex := state.Exhibition
		if err := requireStatus(ex, domain.ExhibitionActive); err != nil {
			return domain.ExhibitionChange{}, err
		}

		ex.Status = domain.ExhibitionCompleted
		return domain.ExhibitionChange{Exhibition: ex}, nil
	})
}

// Cancel calls the exhibition off on behalf of its organization or its venue's municipality.
// Every participation still running is cancelled in the same transaction, including ones
// invited after the request was made.
func (s *ExhibitionService) Cancel(ctx context.Context, actor domain.Actor, id uint, reason string) (domain.Exhibition, error) {
	ex, err := s.load(ctx, actor, id, authz.CancelExhibition)
	if err != nil {
		return domain.Exhibition{}, err
	}

	if reason == "" {
		return domain.Exhibition{}, domain.Invalid("a cancellation reason is required")
	}
	if err = cancellable(ex); err != nil {
		return domain.Exhibition{}, err
	}

	status := domain.ExhibitionCancelledByOrg
	if actor.Role == domain.RoleMunicipalityAdmin {
		status = domain.ExhibitionCancelledByMunicipality
	}

	now := s.now()
	var cancelled int
	updated, err := s.transition(ctx, id, func(state domain.ExhibitionState) (domain.ExhibitionChange, error) {
		ex := state.Exhibition
		if err := cancellable(ex); err != nil {
			return domain.ExhibitionChange{}, err
		}

		var changes []domain.ParticipationChange
		for _, p := range state.Participations {
			if p.Status.IsTerminal() {
				continue
			}

			change, err := p.Cancellation(reason, now)
			if err != nil {
				return domain.ExhibitionChange{}, err
			}
			changes = append(changes, change)
		}
		cancelled = len(changes)

		ex.Status = status
		ex.CancelReason = reason
		return domain.ExhibitionChange{Exhibition: ex, Participations: changes}, nil
	})
	if err != nil {
		return domain.Exhibition{}, err
	}

	zap.L().Info("exhibition cancelled",
		zap.Uint("exhibition_id", id),
		zap.String("status", string(status)),
		zap.Int("participations_cancelled", cancelled),
	)

	return updated, nil
}

func (s *ExhibitionService) load(ctx context.Context, actor domain.Actor, id uint, capability authz.Capability) (domain.Exhibition, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, capability); err != nil {
		return domain.Exhibition{}, err
	}

	ex, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ex, nil
}

// transition runs plan against the locked exhibition and its participations.
func (s *ExhibitionService) transition(ctx context.Context, id uint, plan domain.ExhibitionPlan) (domain.Exhibition, error) {
	updated, err := s.repo.Transition(ctx, id, plan)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.Transition -> %w", err)
	}

	return updated, nil
}

func cancellable(ex domain.Exhibition) error {
	if ex.Status.IsLocked() {
		return ErrLockedPhase
	}
	if ex.Status.IsCancelled() {
		return &domain.StateError{Entity: "exhibition", Current: string(ex.Status), Want: []string{"not cancelled"}}
	}

	return nil
}

func hasConfirmedInstitution(participations []domain.Participation) bool {
	for _, p := range participations {
		if !p.Kind.IsInstitution() {
			continue
		}
		if p.Status == domain.ParticipationConfirmed || p.Status == domain.ParticipationFinalized {
			return true
		}
	}

	return false
}
