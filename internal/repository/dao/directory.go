package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrMunicipalityNotFound = fmt.Errorf("municipality %w", ErrNotFound)
	ErrVenueNotFound        = fmt.Errorf("venue %w", ErrNotFound)
	ErrInstitutionNotFound  = fmt.Errorf("institution %w", ErrNotFound)
	ErrActivityNotFound     = fmt.Errorf("activity %w", ErrNotFound)
)

type Organization struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	OwnerID     uint   `gorm:"not null;index"`
	Owner       User   `gorm:"foreignKey:OwnerID"`
	CreatedAt   time.Time
}

type Municipality struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	AdminID   uint   `gorm:"not null;index"`
	Admin     User   `gorm:"foreignKey:AdminID"`
	CreatedAt time.Time
}

type Venue struct {
	ID              uint         `gorm:"primaryKey"`
	MunicipalityID  uint         `gorm:"not null;index"`
	Municipality    Municipality `gorm:"foreignKey:MunicipalityID"`
	Name            string       `gorm:"not null"`
	Address         string
	MaxCapacity     int
	SpaceSqm        float64
	RentalFeePerDay decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Active          bool            `gorm:"not null;default:true"`
}

type Institution struct {
	ID           uint   `gorm:"primaryKey"`
	Kind         string `gorm:"not null;index"`
	Name         string `gorm:"not null"`
	ContactEmail string
	AdminID      uint `gorm:"not null;index"`
	Admin        User `gorm:"foreignKey:AdminID"`
	CreatedAt    time.Time
}

type Activity struct {
	ID                       uint        `gorm:"primaryKey"`
	ProviderID               uint        `gorm:"not null;index"`
	Provider                 Institution `gorm:"foreignKey:ProviderID"`
	Name                     string      `gorm:"not null"`
	Description              string      `gorm:"type:text"`
	Type                     string
	SuggestedDurationMinutes int
	SuggestedMaxParticipants int
	Active                   bool `gorm:"not null;default:true"`
	CreatedAt                time.Time
}

type DirectoryDAO struct {
	db *gorm.DB
}

func NewDirectoryDAO(db *gorm.DB) *DirectoryDAO {
	return &DirectoryDAO{
		db: db,
	}
}

func (d *DirectoryDAO) InsertOrganization(ctx context.Context, org Organization) (Organization, error) {
	if err := d.db.WithContext(ctx).Omit("Owner").Create(&org).Error; err != nil {
		return Organization{}, err
	}

	return org, nil
}

func (d *DirectoryDAO) FindOrganization(ctx context.Context, id uint) (Organization, error) {
	var org Organization
	if err := first(d.db.WithContext(ctx), &org, id, ErrOrganizationNotFound); err != nil {
		return Organization{}, err
	}

	return org, nil
}

func (d *DirectoryDAO) InsertMunicipality(ctx context.Context, m Municipality) (Municipality, error) {
	if err := d.db.WithContext(ctx).Omit("Admin").Create(&m).Error; err != nil {
		return Municipality{}, err
	}

	return m, nil
}

func (d *DirectoryDAO) FindMunicipality(ctx context.Context, id uint) (Municipality, error) {
	var m Municipality
	if err := first(d.db.WithContext(ctx), &m, id, ErrMunicipalityNotFound); err != nil {
		return Municipality{}, err
	}

	return m, nil
}

func (d *DirectoryDAO) InsertVenue(ctx context.Context, v Venue) (Venue, error) {
	if err := d.db.WithContext(ctx).Omit("Municipality").Create(&v).Error; err != nil {
		return Venue{}, err
	}

	return v, nil
}

func (d *DirectoryDAO) FindVenue(ctx context.Context, id uint) (Venue, error) {
	var v Venue
	if err := first(d.db.WithContext(ctx), &v, id, ErrVenueNotFound); err != nil {
		return Venue{}, err
	}

	return v, nil
}

func (d *DirectoryDAO) ListVenues(ctx context.Context, activeOnly bool) ([]Venue, error) {
	var venues []Venue

	q := d.db.WithContext(ctx).Order("id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&venues).Error; err != nil {
		return nil, err
	}

	return venues, nil
}

func (d *DirectoryDAO) InsertInstitution(ctx context.Context, i Institution) (Institution, error) {
	if err := d.db.WithContext(ctx).Omit("Admin").Create(&i).Error; err != nil {
		return Institution{}, err
	}

	return i, nil
}

func (d *DirectoryDAO) FindInstitution(ctx context.Context, id uint) (Institution, error) {
	var i Institution
	if err := first(d.db.WithContext(ctx), &i, id, ErrInstitutionNotFound); err != nil {
		return Institution{}, err
	}

	return i, nil
}

func (d *DirectoryDAO) InsertActivity(ctx context.Context, a Activity) (Activity, error) {
	if err := d.db.WithContext(ctx).Omit("Provider").Create(&a).Error; err != nil {
		return Activity{}, err
	}

	return a, nil
}

// FindActivities returns the activities with the given ids, failing if any is missing.
func (d *DirectoryDAO) FindActivities(ctx context.Context, ids []uint) ([]Activity, error) {
	var activities []Activity
	if len(ids) == 0 {
		return activities, nil
	}

	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&activities).Error; err != nil {
		return nil, err
	}

	if len(activities) != len(unique(ids)) {
		return nil, ErrActivityNotFound
	}

	return activities, nil
}

func first(db *gorm.DB, dest interface{}, id uint, notFound error) error {
	if err := db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}

		return err
	}

	return nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
