package service

import (
	"context"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

// DirectoryService manages the parties an exhibition involves: organizations, municipalities and
// their venues, participant institutions and provider activities.
type DirectoryService struct {
	repo DirectoryRepository
}

func NewDirectoryService(repo DirectoryRepository) *DirectoryService {
	return &DirectoryService{
		repo: repo,
	}
}

func (s *DirectoryService) CreateOrganization(ctx context.Context, actor domain.Actor, org domain.Organization) (domain.Organization, error) {
	org.OwnerID = actor.UserID
	if err := authz.Check(actor, authz.OwnerChain{OrganizationOwnerID: org.OwnerID}, authz.ManageExhibition); err != nil {
		return domain.Organization{}, err
	}

	created, err := s.repo.CreateOrganization(ctx, org)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("s.repo.CreateOrganization -> %w", err)
	}

	return created, nil
}

func (s *DirectoryService) CreateMunicipality(ctx context.Context, actor domain.Actor, m domain.Municipality) (domain.Municipality, error) {
	m.AdminID = actor.UserID
	if err := authz.Check(actor, authz.OwnerChain{MunicipalityAdminID: m.AdminID}, authz.ReviewVenue); err != nil {
		return domain.Municipality{}, err
	}

	created, err := s.repo.CreateMunicipality(ctx, m)
	if err != nil {
		return domain.Municipality{}, fmt.Errorf("s.repo.CreateMunicipality -> %w", err)
	}

	return created, nil
}

func (s *DirectoryService) CreateVenue(ctx context.Context, actor domain.Actor, v domain.Venue) (domain.Venue, error) {
	m, err := s.repo.FindMunicipality(ctx, v.MunicipalityID)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.FindMunicipality -> %w", err)
	}

	if err = authz.Check(actor, authz.OwnerChain{MunicipalityAdminID: m.AdminID}, authz.ReviewVenue); err != nil {
		return domain.Venue{}, err
	}

	v.Active = true
	created, err := s.repo.CreateVenue(ctx, v)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.CreateVenue -> %w", err)
	}

	return created, nil
}

func (s *DirectoryService) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	venues, err := s.repo.ListVenues(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListVenues -> %w", err)
	}

	return venues, nil
}

// CreateInstitution registers a university, school or provider administered by the actor.
func (s *DirectoryService) CreateInstitution(ctx context.Context, actor domain.Actor, i domain.Institution) (domain.Institution, error) {
	if !i.Kind.Valid() {
		return domain.Institution{}, domain.Invalid("unknown institution kind %q", i.Kind)
	}

	i.AdminID = actor.UserID
	chain := authz.OwnerChain{ParticipantKind: i.Kind, ParticipantAdminID: i.AdminID}
	if err := authz.Check(actor, chain, authz.ActAsParticipant); err != nil {
		return domain.Institution{}, err
	}

	created, err := s.repo.CreateInstitution(ctx, i)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("s.repo.CreateInstitution -> %w", err)
	}

	return created, nil
}

func (s *DirectoryService) CreateActivity(ctx context.Context, actor domain.Actor, a domain.Activity) (domain.Activity, error) {
	provider, err := s.repo.FindInstitution(ctx, a.ProviderID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.FindInstitution -> %w", err)
	}

	chain := authz.OwnerChain{ParticipantKind: provider.Kind, ParticipantAdminID: provider.AdminID}
	if err = authz.Check(actor, chain, authz.ActAsParticipant); err != nil {
		return domain.Activity{}, err
	}

	if !provider.Kind.Capabilities().Proposes {
		return domain.Activity{}, domain.Invalid("institution %d is a %s and cannot offer activities", provider.ID, provider.Kind)
	}

	a.Active = true
	created, err := s.repo.CreateActivity(ctx, a)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.CreateActivity -> %w", err)
	}

	return created, nil
}
