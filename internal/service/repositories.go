package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type OwnerRepository interface {
	ExhibitionOwners(ctx context.Context, exhibitionID uint) (authz.OwnerChain, error)
	VenueRequestOwners(ctx context.Context, requestID uint) (authz.OwnerChain, error)
	ParticipationOwners(ctx context.Context, participationID uint) (authz.OwnerChain, error)
	RegistrationOwners(ctx context.Context, registrationID uint) (authz.OwnerChain, error)
}

type DirectoryRepository interface {
	CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error)
	FindOrganization(ctx context.Context, id uint) (domain.Organization, error)
	CreateMunicipality(ctx context.Context, m domain.Municipality) (domain.Municipality, error)
	FindMunicipality(ctx context.Context, id uint) (domain.Municipality, error)
	CreateVenue(ctx context.Context, v domain.Venue) (domain.Venue, error)
	FindVenue(ctx context.Context, id uint) (domain.Venue, error)
	ListVenues(ctx context.Context, activeOnly bool) ([]domain.Venue, error)
	CreateInstitution(ctx context.Context, i domain.Institution) (domain.Institution, error)
	FindInstitution(ctx context.Context, id uint) (domain.Institution, error)
	CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)
	FindActivities(ctx context.Context, ids []uint) ([]domain.Activity, error)
}

type ExhibitionRepository interface {
	Create(ctx context.Context, ex domain.Exhibition) (domain.Exhibition, error)
	FindByID(ctx context.Context, id uint) (domain.Exhibition, error)
	List(ctx context.Context, organizationID uint) ([]domain.Exhibition, error)
	Transition(ctx context.Context, id uint, plan domain.ExhibitionPlan) (domain.Exhibition, error)
	FindFinancial(ctx context.Context, exhibitionID uint) (domain.ExhibitionFinancial, error)
	ListFinancials(ctx context.Context, organizationID uint) ([]domain.ExhibitionFinancial, error)
	CountByStatus(ctx context.Context, organizationID uint) (map[string]int64, error)
}

type VenueRequestRepository interface {
	Create(ctx context.Context, vr domain.VenueRequest) (domain.VenueRequest, error)
	FindByID(ctx context.Context, id uint) (domain.VenueRequest, error)
	ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.VenueRequest, error)
	ApprovedBookings(ctx context.Context, venueID, exhibitionID uint) ([]domain.VenueBooking, error)
	Review(ctx context.Context, vr domain.VenueRequest, ex domain.Exhibition) (domain.VenueRequest, error)
}

type ParticipationRepository interface {
	Invite(ctx context.Context, p domain.Participation, statuses []domain.ExhibitionStatus, advanceTo domain.ExhibitionStatus) (domain.Participation, error)
	FindByID(ctx context.Context, id uint) (domain.Participation, error)
	ListByExhibition(ctx context.Context, exhibitionID uint, kind domain.Kind) ([]domain.Participation, error)
	ListDeadlineCandidates(ctx context.Context, now time.Time) ([]domain.Participation, error)
	Apply(ctx context.Context, ch domain.ParticipationChange) (domain.Participation, error)
}

type BoothRepository interface {
	ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.Booth, error)
	Reassign(ctx context.Context, exhibitionID uint, allocations []domain.BoothAllocation, schedule json.RawMessage, statuses []domain.ExhibitionStatus) error
	SumMaxParticipants(ctx context.Context, exhibitionID uint) (int, error)
}

type StudentRepository interface {
	Create(ctx context.Context, reg domain.StudentRegistration) (domain.StudentRegistration, error)
	FindByID(ctx context.Context, id uint) (domain.StudentRegistration, error)
	FindLive(ctx context.Context, exhibitionID, studentID uint) (domain.StudentRegistration, error)
	ListByStudent(ctx context.Context, studentID uint) ([]domain.StudentRegistration, error)
	CountApproved(ctx context.Context, exhibitionID uint) (int, error)
	Update(ctx context.Context, reg domain.StudentRegistration, from domain.StudentRegistration, visitors int) (domain.StudentRegistration, error)
	CreateFeedback(ctx context.Context, fb domain.ExhibitionFeedback) (domain.ExhibitionFeedback, error)
	ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error)
}
