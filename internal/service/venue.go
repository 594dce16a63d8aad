package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type VenueService struct {
	repo     VenueRequestRepository
	exRepo   ExhibitionRepository
	dirRepo  DirectoryRepository
	owners   OwnerRepository
	settings Settings
	now      func() time.Time
}

func NewVenueService(repo VenueRequestRepository, exRepo ExhibitionRepository, dirRepo DirectoryRepository, owners OwnerRepository, settings Settings) *VenueService {
	return &VenueService{
		repo:     repo,
		exRepo:   exRepo,
		dirRepo:  dirRepo,
		owners:   owners,
		settings: settings,
		now:      time.Now,
	}
}

// RequestVenue asks a municipality for one of its venues. The exhibition waits in VENUE_PENDING
// until the request is reviewed.
func (s *VenueService) RequestVenue(ctx context.Context, actor domain.Actor, exhibitionID, venueID uint, notes string, responseDeadline *time.Time) (domain.VenueRequest, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return domain.VenueRequest{}, err
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = ex.Require(domain.ExhibitionDraft); err != nil {
		return domain.VenueRequest{}, err
	}

	venue, err := s.dirRepo.FindVenue(ctx, venueID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.dirRepo.FindVenue -> %w", err)
	}
	if !venue.Active {
		return domain.VenueRequest{}, domain.Invalid("venue %d is not active", venue.ID)
	}

	now := s.now()
	deadline, err := deadlineOr(responseDeadline, now, s.settings.ResponseWindow)
	if err != nil {
		return domain.VenueRequest{}, err
	}

	created, err := s.repo.Create(ctx, domain.VenueRequest{
		ExhibitionID:     ex.ID,
		VenueID:          venue.ID,
		Status:           domain.VenueRequestPending,
		OrgNotes:         notes,
		ResponseDeadline: deadline,
		RequestedAt:      now,
	})
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Review is the municipality's answer. A request left unanswered past its deadline is rejected
// on first access and the exhibition goes back to DRAFT.
func (s *VenueService) Review(ctx context.Context, actor domain.Actor, requestID uint, approve bool, response string) (domain.VenueRequest, error) {
	chain, err := s.owners.VenueRequestOwners(ctx, requestID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.owners.VenueRequestOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ReviewVenue); err != nil {
		return domain.VenueRequest{}, err
	}

	vr, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if vr.Status != domain.VenueRequestPending {
		return domain.VenueRequest{}, &domain.StateError{Entity: "venue request", Current: string(vr.Status), Want: []string{string(domain.VenueRequestPending)}}
	}

	ex, err := s.exRepo.FindByID(ctx, vr.ExhibitionID)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = ex.Require(domain.ExhibitionVenuePending); err != nil {
		return domain.VenueRequest{}, err
	}

	now := s.now()
	vr.ReviewedAt = &now
	vr.ReviewerID = &actor.UserID

	if vr.ResponseDeadline != nil && now.After(*vr.ResponseDeadline) {
		vr.Status = domain.VenueRequestRejected
		vr.MunicipalityResponse = deadlineCancelReason
		ex.Status = domain.ExhibitionDraft
		if _, err = s.repo.Review(ctx, vr, ex); err != nil {
			return domain.VenueRequest{}, fmt.Errorf("s.repo.Review -> %w", err)
		}

		zap.L().Info("venue request rejected after deadline",
			zap.Uint("venue_request_id", vr.ID),
			zap.Uint("exhibition_id", ex.ID),
		)

		return domain.VenueRequest{}, fmt.Errorf("venue request %d -> %w", vr.ID, ErrDeadlinePassed)
	}

	vr.MunicipalityResponse = response
	if !approve {
		vr.Status = domain.VenueRequestRejected
		ex.Status = domain.ExhibitionDraft
	} else {
		if err = s.checkOverlap(ctx, vr, ex); err != nil {
			return domain.VenueRequest{}, err
		}

		venue, err := s.dirRepo.FindVenue(ctx, vr.VenueID)
		if err != nil {
			return domain.VenueRequest{}, fmt.Errorf("s.dirRepo.FindVenue -> %w", err)
		}

		vr.Status = domain.VenueRequestApproved
		ex.Status = domain.ExhibitionVenueApproved
		ex.VisitorCapacity = venue.MaxCapacity
		if ex.TotalAvailableBooths == 0 {
			ex.TotalAvailableBooths = venue.BoothsFor(ex.StandardBoothSqm)
		}
	}

	reviewed, err := s.repo.Review(ctx, vr, ex)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("s.repo.Review -> %w", err)
	}

	return reviewed, nil
}

func (s *VenueService) ListRequests(ctx context.Context, actor domain.Actor, exhibitionID uint) ([]domain.VenueRequest, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ViewExhibition); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByExhibition -> %w", err)
	}

	return requests, nil
}

func (s *VenueService) checkOverlap(ctx context.Context, vr domain.VenueRequest, ex domain.Exhibition) error {
	bookings, err := s.repo.ApprovedBookings(ctx, vr.VenueID, ex.ID)
	if err != nil {
		return fmt.Errorf("s.repo.ApprovedBookings -> %w", err)
	}

	for _, b := range bookings {
		if domain.DatesOverlap(ex.StartDate, ex.EndDate, b.StartDate, b.EndDate) {
			return fmt.Errorf("exhibition %d holds the venue -> %w", b.ExhibitionID, ErrVenueOverlap)
		}
	}

	return nil
}
