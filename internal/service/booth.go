package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type BoothService struct {
	repo   BoothRepository
	exRepo ExhibitionRepository
	owners OwnerRepository
}

func NewBoothService(repo BoothRepository, exRepo ExhibitionRepository, owners OwnerRepository) *BoothService {
	return &BoothService{
		repo:   repo,
		exRepo: exRepo,
		owners: owners,
	}
}

func (s *BoothService) List(ctx context.Context, exhibitionID uint) ([]domain.Booth, error) {
	if _, err := s.exRepo.FindByID(ctx, exhibitionID); err != nil {
		return nil, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}

	booths, err := s.repo.ListByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByExhibition -> %w", err)
	}

	return booths, nil
}

// Reassign moves booths to their zone and number on the floor plan. The schedule document can only
// be replaced while planning; settlement writes the final snapshot.
func (s *BoothService) Reassign(ctx context.Context, actor domain.Actor, exhibitionID uint, allocations []domain.BoothAllocation, schedule json.RawMessage) error {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return err
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}

	statuses := []domain.ExhibitionStatus{domain.ExhibitionPlanning, domain.ExhibitionConfirmed}
	if err = ex.Require(statuses...); err != nil {
		return err
	}
	if len(schedule) > 0 {
		if err = ex.Require(domain.ExhibitionPlanning); err != nil {
			return err
		}
		statuses = statuses[:1]
	}

	if err = validateAllocations(allocations); err != nil {
		return err
	}

	if err = s.repo.Reassign(ctx, exhibitionID, allocations, schedule, statuses); err != nil {
		return fmt.Errorf("s.repo.Reassign -> %w", err)
	}

	return nil
}

func validateAllocations(allocations []domain.BoothAllocation) error {
	if len(allocations) == 0 {
		return domain.Invalid("no booth allocations given")
	}

	type slot struct {
		zone   string
		number int
	}
	booths := make(map[uint]struct{}, len(allocations))
	slots := make(map[slot]struct{}, len(allocations))
	for _, a := range allocations {
		if a.Zone == "" {
			return domain.Invalid("booth %d needs a zone", a.BoothID)
		}
		if a.BoothNumber < 0 {
			return domain.Invalid("booth %d has a negative number", a.BoothID)
		}
		if _, ok := booths[a.BoothID]; ok {
			return domain.Invalid("booth %d is allocated twice", a.BoothID)
		}
		booths[a.BoothID] = struct{}{}

		if a.BoothNumber == 0 {
			continue
		}
		k := slot{a.Zone, a.BoothNumber}
		if _, ok := slots[k]; ok {
			return domain.Invalid("zone %s booth %d is allocated twice", a.Zone, a.BoothNumber)
		}
		slots[k] = struct{}{}
	}

	return nil
}

// allocateBooths builds count unplaced booths for p. Provider booths follow the activity they host.
func allocateBooths(p domain.Participation, count int, activities []domain.Activity) []domain.Booth {
	caps := p.Capabilities()
	if !caps.HasBooths || count <= 0 {
		return nil
	}

	booths := make([]domain.Booth, count)
	for i := range booths {
		booths[i] = domain.Booth{
			ExhibitionID:    p.ExhibitionID,
			BoothType:       caps.BoothType,
			ParticipationID: p.ID,
			Zone:            domain.UnassignedZone,
		}

		if i < len(activities) {
			id := activities[i].ID
			booths[i].ActivityID = &id
			booths[i].DurationMinutes = activities[i].SuggestedDurationMinutes
			booths[i].MaxParticipants = activities[i].SuggestedMaxParticipants
		}
	}

	return booths
}
