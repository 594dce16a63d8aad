package repository

import (
	"context"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type VenueRequestDAO interface {
	Insert(ctx context.Context, vr dao.VenueRequest) (dao.VenueRequest, error)
	FindByID(ctx context.Context, id uint) (dao.VenueRequest, error)
	ListByExhibition(ctx context.Context, exhibitionID uint) ([]dao.VenueRequest, error)
	ApprovedBookings(ctx context.Context, venueID, exhibitionID uint) ([]dao.VenueBooking, error)
	Review(ctx context.Context, vr dao.VenueRequest, ex dao.Exhibition, checkOverlap bool) (dao.VenueRequest, error)
}

type VenueRequestRepository struct {
	dao VenueRequestDAO
}

func NewVenueRequestRepository(dao VenueRequestDAO) *VenueRequestRepository {
	return &VenueRequestRepository{
		dao: dao,
	}
}

// Create files the request and moves the exhibition to VENUE_PENDING.
func (r *VenueRequestRepository) Create(ctx context.Context, vr domain.VenueRequest) (domain.VenueRequest, error) {
	created, err := r.dao.Insert(ctx, venueRequestToDao(vr))
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("r.dao.Insert -> %w", mapErr(err))
	}

	return venueRequestToDomain(created), nil
}

func (r *VenueRequestRepository) FindByID(ctx context.Context, id uint) (domain.VenueRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("r.dao.FindByID -> %w", mapErr(err))
	}

	return venueRequestToDomain(found), nil
}

func (r *VenueRequestRepository) ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.VenueRequest, error) {
	found, err := r.dao.ListByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByExhibition -> %w", mapErr(err))
	}

	requests := make([]domain.VenueRequest, len(found))
	for i, vr := range found {
		requests[i] = venueRequestToDomain(vr)
	}

	return requests, nil
}

func (r *VenueRequestRepository) ApprovedBookings(ctx context.Context, venueID, exhibitionID uint) ([]domain.VenueBooking, error) {
	found, err := r.dao.ApprovedBookings(ctx, venueID, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ApprovedBookings -> %w", mapErr(err))
	}

	bookings := make([]domain.VenueBooking, len(found))
	for i, b := range found {
		bookings[i] = domain.VenueBooking{
			RequestID:    b.RequestID,
			ExhibitionID: b.ExhibitionID,
			StartDate:    b.StartDate,
			EndDate:      b.EndDate,
		}
	}

	return bookings, nil
}

// Review writes the decision and the exhibition it moves. Approvals re-check the venue calendar
// under a lock.
func (r *VenueRequestRepository) Review(ctx context.Context, vr domain.VenueRequest, ex domain.Exhibition) (domain.VenueRequest, error) {
	approve := vr.Status == domain.VenueRequestApproved

	updated, err := r.dao.Review(ctx, venueRequestToDao(vr), exhibitionToDao(ex), approve)
	if err != nil {
		return domain.VenueRequest{}, fmt.Errorf("r.dao.Review -> %w", mapErr(err))
	}

	return venueRequestToDomain(updated), nil
}

func venueRequestToDao(vr domain.VenueRequest) dao.VenueRequest {
	return dao.VenueRequest{
		ID:                   vr.ID,
		ExhibitionID:         vr.ExhibitionID,
		VenueID:              vr.VenueID,
		Status:               string(vr.Status),
		OrgNotes:             vr.OrgNotes,
		MunicipalityResponse: vr.MunicipalityResponse,
		ResponseDeadline:     vr.ResponseDeadline,
		RequestedAt:          vr.RequestedAt,
		ReviewedAt:           vr.ReviewedAt,
		ReviewerID:           vr.ReviewerID,
	}
}

func venueRequestToDomain(vr dao.VenueRequest) domain.VenueRequest {
	return domain.VenueRequest{
		ID:                   vr.ID,
		ExhibitionID:         vr.ExhibitionID,
		VenueID:              vr.VenueID,
		Status:               domain.VenueRequestStatus(vr.Status),
		OrgNotes:             vr.OrgNotes,
		MunicipalityResponse: vr.MunicipalityResponse,
		ResponseDeadline:     vr.ResponseDeadline,
		RequestedAt:          vr.RequestedAt,
		ReviewedAt:           vr.ReviewedAt,
		ReviewerID:           vr.ReviewerID,
	}
}
