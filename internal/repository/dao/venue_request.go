package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVenueRequestNotFound = fmt.Errorf("venue request %w", ErrNotFound)
	ErrVenueBooked          = errors.New("venue already booked for overlapping dates")
)

type VenueRequest struct {
	ID                   uint   `gorm:"primaryKey"`
	ExhibitionID         uint   `gorm:"not null;index"`
	VenueID              uint   `gorm:"not null;index"`
	Venue                Venue  `gorm:"foreignKey:VenueID"`
	Status               string `gorm:"not null;index"`
	OrgNotes             string `gorm:"type:text"`
	MunicipalityResponse string `gorm:"type:text"`
	ResponseDeadline     *time.Time
	RequestedAt          time.Time `gorm:"not null"`
	ReviewedAt           *time.Time
	ReviewerID           *uint
}

// VenueBooking is an approved request joined with the dates of its exhibition.
type VenueBooking struct {
	RequestID    uint
	ExhibitionID uint
	StartDate    time.Time
	EndDate      time.Time
}

type VenueRequestDAO struct {
	db *gorm.DB
}

func NewVenueRequestDAO(db *gorm.DB) *VenueRequestDAO {
	return &VenueRequestDAO{
		db: db,
	}
}

// Insert files the request and moves the exhibition from DRAFT to VENUE_PENDING.
func (d *VenueRequestDAO) Insert(ctx context.Context, vr VenueRequest) (VenueRequest, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockExhibition(tx, vr.ExhibitionID, "DRAFT"); err != nil {
			return err
		}

		err := tx.Model(&Exhibition{}).Where("id = ?", vr.ExhibitionID).Update("status", "VENUE_PENDING").Error
		if err != nil {
			return err
		}

		return tx.Omit("Venue").Create(&vr).Error
	})
	if err != nil {
		return VenueRequest{}, err
	}

	return vr, nil
}

func (d *VenueRequestDAO) FindByID(ctx context.Context, id uint) (VenueRequest, error) {
	var vr VenueRequest
	if err := first(d.db.WithContext(ctx), &vr, id, ErrVenueRequestNotFound); err != nil {
		return VenueRequest{}, err
	}

	return vr, nil
}

func (d *VenueRequestDAO) ListByExhibition(ctx context.Context, exhibitionID uint) ([]VenueRequest, error) {
	var requests []VenueRequest

	err := d.db.WithContext(ctx).Where("exhibition_id = ?", exhibitionID).Order("requested_at DESC, id DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// ApprovedBookings lists the approved requests holding venueID for exhibitions that are not
// cancelled, leaving out exhibitionID itself.
func (d *VenueRequestDAO) ApprovedBookings(ctx context.Context, venueID, exhibitionID uint) ([]VenueBooking, error) {
	var bookings []VenueBooking

	err := approvedBookings(d.db.WithContext(ctx), venueID, exhibitionID).Scan(&bookings).Error
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// Review persists the municipality decision on a pending request together with the exhibition
// it moves. With checkOverlap set, the venue row is locked and the booking calendar re-checked
// before the approval is written.
func (d *VenueRequestDAO) Review(ctx context.Context, vr VenueRequest, ex Exhibition, checkOverlap bool) (VenueRequest, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if checkOverlap {
			var venue Venue
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&venue, vr.VenueID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVenueNotFound
				}

				return err
			}

			var overlapping []VenueBooking
			err = approvedBookings(tx, vr.VenueID, ex.ID).
				Where("exhibitions.start_date <= ? AND exhibitions.end_date >= ?", ex.EndDate, ex.StartDate).
				Scan(&overlapping).Error
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return ErrVenueBooked
			}
		}

		if _, err := lockExhibition(tx, ex.ID, "VENUE_PENDING"); err != nil {
			return err
		}

		result := tx.Model(&VenueRequest{}).
			Where("id = ? AND status = ?", vr.ID, "PENDING").
			Updates(map[string]interface{}{
				"status":                vr.Status,
				"municipality_response": vr.MunicipalityResponse,
				"reviewed_at":           vr.ReviewedAt,
				"reviewer_id":           vr.ReviewerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusChanged
		}

		return updateExhibition(tx, ex)
	})
	if err != nil {
		return VenueRequest{}, err
	}

	return vr, nil
}

func approvedBookings(db *gorm.DB, venueID, exhibitionID uint) *gorm.DB {
	return db.Table("venue_requests").
		Select("venue_requests.id AS request_id, exhibitions.id AS exhibition_id, exhibitions.start_date, exhibitions.end_date").
		Joins("JOIN exhibitions ON exhibitions.id = venue_requests.exhibition_id").
		Where("venue_requests.venue_id = ? AND venue_requests.status = ?", venueID, "APPROVED").
		Where("exhibitions.id <> ?", exhibitionID).
		Where("exhibitions.status NOT IN ?", []string{"CANCELLED_BY_ORG", "CANCELLED_BY_MUNICIPALITY"})
}
