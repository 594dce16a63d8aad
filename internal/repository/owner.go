package repository

import (
	"context"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type OwnerDAO interface {
	ExhibitionOwners(ctx context.Context, exhibitionID uint) (dao.Owners, error)
	VenueRequestOwners(ctx context.Context, requestID uint) (dao.Owners, error)
	ParticipationOwners(ctx context.Context, participationID uint) (dao.Owners, error)
	RegistrationOwners(ctx context.Context, registrationID uint) (dao.Owners, error)
}

// OwnerRepository resolves the owner chain authz.Check decides on.
type OwnerRepository struct {
	dao OwnerDAO
}

func NewOwnerRepository(dao OwnerDAO) *OwnerRepository {
	return &OwnerRepository{
		dao: dao,
	}
}

func (r *OwnerRepository) ExhibitionOwners(ctx context.Context, exhibitionID uint) (authz.OwnerChain, error) {
	owners, err := r.dao.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return authz.OwnerChain{}, fmt.Errorf("r.dao.ExhibitionOwners -> %w", mapErr(err))
	}

	return ownersToChain(owners), nil
}

func (r *OwnerRepository) VenueRequestOwners(ctx context.Context, requestID uint) (authz.OwnerChain, error) {
	owners, err := r.dao.VenueRequestOwners(ctx, requestID)
	if err != nil {
		return authz.OwnerChain{}, fmt.Errorf("r.dao.VenueRequestOwners -> %w", mapErr(err))
	}

	return ownersToChain(owners), nil
}

func (r *OwnerRepository) ParticipationOwners(ctx context.Context, participationID uint) (authz.OwnerChain, error) {
	owners, err := r.dao.ParticipationOwners(ctx, participationID)
	if err != nil {
		return authz.OwnerChain{}, fmt.Errorf("r.dao.ParticipationOwners -> %w", mapErr(err))
	}

	return ownersToChain(owners), nil
}

func (r *OwnerRepository) RegistrationOwners(ctx context.Context, registrationID uint) (authz.OwnerChain, error) {
	owners, err := r.dao.RegistrationOwners(ctx, registrationID)
	if err != nil {
		return authz.OwnerChain{}, fmt.Errorf("r.dao.RegistrationOwners -> %w", mapErr(err))
	}

	return ownersToChain(owners), nil
}

func ownersToChain(o dao.Owners) authz.OwnerChain {
	return authz.OwnerChain{
		OrganizationOwnerID: o.OrganizationOwnerID,
		ParticipantKind:     domain.Kind(o.ParticipantKind),
		ParticipantAdminID:  o.ParticipantAdminID,
		MunicipalityAdminID: o.MunicipalityAdminID,
		StudentID:           o.StudentID,
	}
}
