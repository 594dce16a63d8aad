package dao

import (
	"context"

	"gorm.io/gorm"
)

// Owners is the ownership chain of a record, loaded by read-only joins up to the organization.
type Owners struct {
	OrganizationOwnerID uint
	ParticipantKind     string
	ParticipantAdminID  uint
	MunicipalityAdminID uint
	StudentID           uint
}

type OwnerDAO struct {
	db *gorm.DB
}

func NewOwnerDAO(db *gorm.DB) *OwnerDAO {
	return &OwnerDAO{
		db: db,
	}
}

// ExhibitionOwners returns the organization owner and, once a venue was requested, the admin of
// the municipality owning the requested venue.
func (d *OwnerDAO) ExhibitionOwners(ctx context.Context, exhibitionID uint) (Owners, error) {
	var owners Owners

	result := d.db.WithContext(ctx).Table("exhibitions").
		Select("organizations.owner_id AS organization_owner_id, municipalities.admin_id AS municipality_admin_id").
		Joins("JOIN organizations ON organizations.id = exhibitions.organization_id").
		Joins("LEFT JOIN venue_requests ON venue_requests.exhibition_id = exhibitions.id AND venue_requests.status IN ?",
			[]string{"PENDING", "APPROVED"}).
		Joins("LEFT JOIN venues ON venues.id = venue_requests.venue_id").
		Joins("LEFT JOIN municipalities ON municipalities.id = venues.municipality_id").
		Where("exhibitions.id = ?", exhibitionID).
		Order("venue_requests.id DESC NULLS LAST").
		Limit(1).
		Scan(&owners)

	return owners, found(result, ErrExhibitionNotFound)
}

func (d *OwnerDAO) VenueRequestOwners(ctx context.Context, requestID uint) (Owners, error) {
	var owners Owners

	result := d.db.WithContext(ctx).Table("venue_requests").
		Select("organizations.owner_id AS organization_owner_id, municipalities.admin_id AS municipality_admin_id").
		Joins("JOIN exhibitions ON exhibitions.id = venue_requests.exhibition_id").
		Joins("JOIN organizations ON organizations.id = exhibitions.organization_id").
		Joins("JOIN venues ON venues.id = venue_requests.venue_id").
		Joins("JOIN municipalities ON municipalities.id = venues.municipality_id").
		Where("venue_requests.id = ?", requestID).
		Scan(&owners)

	return owners, found(result, ErrVenueRequestNotFound)
}

func (d *OwnerDAO) ParticipationOwners(ctx context.Context, participationID uint) (Owners, error) {
	var owners Owners

	result := d.db.WithContext(ctx).Table("participations").
		Select("organizations.owner_id AS organization_owner_id, participations.kind AS participant_kind, " +
			"institutions.admin_id AS participant_admin_id").
		Joins("JOIN exhibitions ON exhibitions.id = participations.exhibition_id").
		Joins("JOIN organizations ON organizations.id = exhibitions.organization_id").
		Joins("JOIN institutions ON institutions.id = participations.institution_id").
		Where("participations.id = ?", participationID).
		Scan(&owners)

	return owners, found(result, ErrParticipationNotFound)
}

func (d *OwnerDAO) RegistrationOwners(ctx context.Context, registrationID uint) (Owners, error) {
	var owners Owners

	result := d.db.WithContext(ctx).Table("student_registrations").
		Select("organizations.owner_id AS organization_owner_id, student_registrations.student_id AS student_id").
		Joins("JOIN exhibitions ON exhibitions.id = student_registrations.exhibition_id").
		Joins("JOIN organizations ON organizations.id = exhibitions.organization_id").
		Where("student_registrations.id = ?", registrationID).
		Scan(&owners)

	return owners, found(result, ErrRegistrationNotFound)
}

// found turns an empty Scan into notFound; Scan does not report gorm.ErrRecordNotFound.
func found(result *gorm.DB, notFound error) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}

	return nil
}
