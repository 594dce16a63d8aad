package repository

import (
	"context"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type DirectoryDAO interface {
	InsertOrganization(ctx context.Context, org dao.Organization) (dao.Organization, error)
	FindOrganization(ctx context.Context, id uint) (dao.Organization, error)
	InsertMunicipality(ctx context.Context, m dao.Municipality) (dao.Municipality, error)
	FindMunicipality(ctx context.Context, id uint) (dao.Municipality, error)
	InsertVenue(ctx context.Context, v dao.Venue) (dao.Venue, error)
	FindVenue(ctx context.Context, id uint) (dao.Venue, error)
	ListVenues(ctx context.Context, activeOnly bool) ([]dao.Venue, error)
	InsertInstitution(ctx context.Context, i dao.Institution) (dao.Institution, error)
	FindInstitution(ctx context.Context, id uint) (dao.Institution, error)
	InsertActivity(ctx context.Context, a dao.Activity) (dao.Activity, error)
	FindActivities(ctx context.Context, ids []uint) ([]dao.Activity, error)
}

type DirectoryRepository struct {
	dao DirectoryDAO
}

func NewDirectoryRepository(dao DirectoryDAO) *DirectoryRepository {
	return &DirectoryRepository{
		dao: dao,
	}
}

func (r *DirectoryRepository) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	created, err := r.dao.InsertOrganization(ctx, dao.Organization{
		Name:        org.Name,
		Description: org.Description,
		OwnerID:     org.OwnerID,
	})
	if err != nil {
		return domain.Organization{}, fmt.Errorf("r.dao.InsertOrganization -> %w", mapErr(err))
	}

	return organizationToDomain(created), nil
}

func (r *DirectoryRepository) FindOrganization(ctx context.Context, id uint) (domain.Organization, error) {
	found, err := r.dao.FindOrganization(ctx, id)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("r.dao.FindOrganization -> %w", mapErr(err))
	}

	return organizationToDomain(found), nil
}

func (r *DirectoryRepository) CreateMunicipality(ctx context.Context, m domain.Municipality) (domain.Municipality, error) {
	created, err := r.dao.InsertMunicipality(ctx, dao.Municipality{Name: m.Name, AdminID: m.AdminID})
	if err != nil {
		return domain.Municipality{}, fmt.Errorf("r.dao.InsertMunicipality -> %w", mapErr(err))
	}

	return municipalityToDomain(created), nil
}

func (r *DirectoryRepository) FindMunicipality(ctx context.Context, id uint) (domain.Municipality, error) {
	found, err := r.dao.FindMunicipality(ctx, id)
	if err != nil {
		return domain.Municipality{}, fmt.Errorf("r.dao.FindMunicipality -> %w", mapErr(err))
	}

	return municipalityToDomain(found), nil
}

func (r *DirectoryRepository) CreateVenue(ctx context.Context, v domain.Venue) (domain.Venue, error) {
	created, err := r.dao.InsertVenue(ctx, dao.Venue{
		MunicipalityID:  v.MunicipalityID,
		Name:            v.Name,
		Address:         v.Address,
		MaxCapacity:     v.MaxCapacity,
		SpaceSqm:        v.SpaceSqm,
		RentalFeePerDay: v.RentalFeePerDay,
		Active:          v.Active,
	})
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.dao.InsertVenue -> %w", mapErr(err))
	}

	return venueToDomain(created), nil
}

func (r *DirectoryRepository) FindVenue(ctx context.Context, id uint) (domain.Venue, error) {
	found, err := r.dao.FindVenue(ctx, id)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.dao.FindVenue -> %w", mapErr(err))
	}

	return venueToDomain(found), nil
}

func (r *DirectoryRepository) ListVenues(ctx context.Context, activeOnly bool) ([]domain.Venue, error) {
	found, err := r.dao.ListVenues(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListVenues -> %w", mapErr(err))
	}

	venues := make([]domain.Venue, len(found))
	for i, v := range found {
		venues[i] = venueToDomain(v)
	}

	return venues, nil
}

func (r *DirectoryRepository) CreateInstitution(ctx context.Context, i domain.Institution) (domain.Institution, error) {
	created, err := r.dao.InsertInstitution(ctx, dao.Institution{
		Kind:         string(i.Kind),
		Name:         i.Name,
		ContactEmail: i.ContactEmail,
		AdminID:      i.AdminID,
	})
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.InsertInstitution -> %w", mapErr(err))
	}

	return institutionToDomain(created), nil
}

func (r *DirectoryRepository) FindInstitution(ctx context.Context, id uint) (domain.Institution, error) {
	found, err := r.dao.FindInstitution(ctx, id)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.FindInstitution -> %w", mapErr(err))
	}

	return institutionToDomain(found), nil
}

func (r *DirectoryRepository) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	created, err := r.dao.InsertActivity(ctx, dao.Activity{
		ProviderID:               a.ProviderID,
		Name:                     a.Name,
		Description:              a.Description,
		Type:                     a.Type,
		SuggestedDurationMinutes: a.SuggestedDurationMinutes,
		SuggestedMaxParticipants: a.SuggestedMaxParticipants,
		Active:                   a.Active,
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.InsertActivity -> %w", mapErr(err))
	}

	return activityToDomain(created), nil
}

func (r *DirectoryRepository) FindActivities(ctx context.Context, ids []uint) ([]domain.Activity, error) {
	found, err := r.dao.FindActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActivities -> %w", mapErr(err))
	}

	activities := make([]domain.Activity, len(found))
	for i, a := range found {
		activities[i] = activityToDomain(a)
	}

	return activities, nil
}

func organizationToDomain(o dao.Organization) domain.Organization {
	return domain.Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		OwnerID:     o.OwnerID,
		CreatedAt:   o.CreatedAt,
	}
}

func municipalityToDomain(m dao.Municipality) domain.Municipality {
	return domain.Municipality{
		ID:        m.ID,
		Name:      m.Name,
		AdminID:   m.AdminID,
		CreatedAt: m.CreatedAt,
	}
}

func venueToDomain(v dao.Venue) domain.Venue {
	return domain.Venue{
		ID:              v.ID,
		MunicipalityID:  v.MunicipalityID,
		Name:            v.Name,
		Address:         v.Address,
		MaxCapacity:     v.MaxCapacity,
		SpaceSqm:        v.SpaceSqm,
		RentalFeePerDay: v.RentalFeePerDay,
		Active:          v.Active,
	}
}

func institutionToDomain(i dao.Institution) domain.Institution {
	return domain.Institution{
		ID:           i.ID,
		Kind:         domain.Kind(i.Kind),
		Name:         i.Name,
		ContactEmail: i.ContactEmail,
		AdminID:      i.AdminID,
		CreatedAt:    i.CreatedAt,
	}
}

func activityToDomain(a dao.Activity) domain.Activity {
	return domain.Activity{
		ID:                       a.ID,
		ProviderID:               a.ProviderID,
		Name:                     a.Name,
		Description:              a.Description,
		Type:                     a.Type,
		SuggestedDurationMinutes: a.SuggestedDurationMinutes,
		SuggestedMaxParticipants: a.SuggestedMaxParticipants,
		Active:                   a.Active,
		CreatedAt:                a.CreatedAt,
	}
}
