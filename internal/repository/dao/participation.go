package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrParticipationNotFound  = fmt.Errorf("participation %w", ErrNotFound)
	ErrBoothNotFound          = fmt.Errorf("booth %w", ErrNotFound)
	ErrDuplicateParticipation = errors.New("institution already has a live participation in this exhibition")
)

const participationsLiveIndex = "idx_participations_live"

type Participation struct {
	ID                   uint            `gorm:"primaryKey"`
	ExhibitionID         uint            `gorm:"not null;index;uniqueIndex:idx_participations_live,where:status <> 'CANCELLED'"`
	InstitutionID        uint            `gorm:"not null;uniqueIndex:idx_participations_live,where:status <> 'CANCELLED'"`
	Kind                 string          `gorm:"not null"`
	Status               string          `gorm:"not null;index"`
	Fee                  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	PaymentStatus        string
	PaymentDate          *time.Time
	RequestedBooths      int             `gorm:"not null;default:0"`
	ReservedBooths       int             `gorm:"not null;default:0"`
	ApprovedBoothsCount  int             `gorm:"not null;default:0"`
	BoothDetails         datatypes.JSON  `gorm:"type:jsonb"`
	OrgRequirements      string          `gorm:"type:text"`
	Proposal             string          `gorm:"type:text"`
	ProposedCost         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Activities           []Activity      `gorm:"many2many:participation_activities;"`
	OrgResponse          string          `gorm:"type:text"`
	ExpectedVisitors     int
	ResponseDeadline     *time.Time
	ConfirmationDeadline *time.Time
	InvitedAt            time.Time `gorm:"not null"`
	SubmittedAt          *time.Time
	ReviewedAt           *time.Time
	ConfirmedAt          *time.Time
	FinalizedAt          *time.Time
	AttendedAt           *time.Time
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Booth struct {
	ID              uint   `gorm:"primaryKey"`
	ExhibitionID    uint   `gorm:"not null;index"`
	BoothType       string `gorm:"not null"`
	ParticipationID uint   `gorm:"not null;index"`
	ActivityID      *uint
	Zone            string `gorm:"not null;default:'Unassigned'"`
	BoothNumber     int    `gorm:"not null;default:0"`
	DurationMinutes int
	MaxParticipants int
	CreatedAt       time.Time
}

// ParticipationChange mirrors domain.ParticipationChange at the storage level.
type ParticipationChange struct {
	Participation Participation
	From          string
	Reserve       int
	KindCap       int
	Booths        []Booth
	Release       bool
	AddVisitors   int
	// ReplaceActivities rewrites the participation's activity links.
	ReplaceActivities bool
}

// CapacityError is returned when a reservation would overshoot a cap or the exhibition total.
type CapacityError struct {
	Requested int
	Remaining int
	Cap       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested %d booths, %d remain (cap %d)", e.Requested, e.Remaining, e.Cap)
}

type ParticipationDAO struct {
	db *gorm.DB
}

func NewParticipationDAO(db *gorm.DB) *ParticipationDAO {
	return &ParticipationDAO{
		db: db,
	}
}

// Insert creates an invitation while the exhibition is in one of exhibitionStatuses, moving the
// exhibition to advanceTo when that is non-empty and different.
func (d *ParticipationDAO) Insert(ctx context.Context, p Participation, exhibitionStatuses []string, advanceTo string) (Participation, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ex, err := lockExhibition(tx, p.ExhibitionID, exhibitionStatuses...)
		if err != nil {
			return err
		}

		if advanceTo != "" && ex.Status != advanceTo {
			if err = tx.Model(&Exhibition{}).Where("id = ?", ex.ID).Update("status", advanceTo).Error; err != nil {
				return err
			}
		}

		if err = tx.Omit("Activities").Create(&p).Error; err != nil {
			if isUniqueViolation(err, participationsLiveIndex) {
				return ErrDuplicateParticipation
			}

			return err
		}

		return nil
	})
	if err != nil {
		return Participation{}, err
	}

	return p, nil
}

func (d *ParticipationDAO) FindByID(ctx context.Context, id uint) (Participation, error) {
	var p Participation
	if err := first(d.db.WithContext(ctx).Preload("Activities"), &p, id, ErrParticipationNotFound); err != nil {
		return Participation{}, err
	}

	return p, nil
}

// ListByExhibition returns the exhibition's participations, of one kind when kind is non-empty.
func (d *ParticipationDAO) ListByExhibition(ctx context.Context, exhibitionID uint, kind string) ([]Participation, error) {
	var participations []Participation

	q := d.db.WithContext(ctx).Preload("Activities").Where("exhibition_id = ?", exhibitionID).Order("id")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Find(&participations).Error; err != nil {
		return nil, err
	}

	return participations, nil
}

// ListDeadlineCandidates returns participations whose own deadline has passed, plus confirmed
// participations of confirmed exhibitions whose finalization deadline has passed.
func (d *ParticipationDAO) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]Participation, error) {
	var participations []Participation

	err := d.db.WithContext(ctx).
		Joins("JOIN exhibitions ON exhibitions.id = participations.exhibition_id").
		Where("participations.status IN ? AND participations.response_deadline < ?",
			[]string{"INVITED", "REGISTERED", "PROPOSED", "REJECTED"}, now).
		Or("participations.status IN ? AND participations.confirmation_deadline < ?",
			[]string{"ACCEPTED", "APPROVED"}, now).
		Or("participations.status = ? AND exhibitions.status = ? AND exhibitions.finalization_deadline < ?",
			"CONFIRMED", "CONFIRMED", now).
		Order("participations.id").
		Find(&participations).Error
	if err != nil {
		return nil, err
	}

	return participations, nil
}

// Apply persists one participation state change atomically.
func (d *ParticipationDAO) Apply(ctx context.Context, ch ParticipationChange) (Participation, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyChange(tx, &ch)
	})
	if err != nil {
		return Participation{}, err
	}

	return ch.Participation, nil
}

// applyChange is the capacity ledger. It locks the exhibition row, then the participation row,
// so reservations for one exhibition are serialized and count(booths) <= booths_reserved <=
// total_available_booths always holds.
func applyChange(tx *gorm.DB, ch *ParticipationChange) error {
	p := &ch.Participation

	ex, err := lockExhibition(tx, p.ExhibitionID)
	if err != nil {
		return err
	}

	var stored Participation
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stored, p.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipationNotFound
		}

		return err
	}
	if stored.Status != ch.From {
		return ErrStatusChanged
	}

	delta := 0
	p.ReservedBooths = stored.ReservedBooths
	if ch.Release {
		if err = tx.Where("participation_id = ?", p.ID).Delete(&Booth{}).Error; err != nil {
			return err
		}
		delta -= stored.ReservedBooths
		p.ReservedBooths = 0
	}

	if ch.Reserve > 0 {
		remaining := ex.TotalAvailableBooths - (ex.BoothsReserved + delta)
		if (ch.KindCap > 0 && p.ReservedBooths+ch.Reserve > ch.KindCap) || ch.Reserve > remaining {
			return &CapacityError{Requested: ch.Reserve, Remaining: remaining, Cap: ch.KindCap}
		}
		delta += ch.Reserve
		p.ReservedBooths += ch.Reserve
	}

	if delta != 0 {
		err = tx.Model(&Exhibition{}).Where("id = ?", ex.ID).
			UpdateColumn("booths_reserved", gorm.Expr("booths_reserved + ?", delta)).Error
		if err != nil {
			return err
		}
	}

	if len(ch.Booths) > 0 {
		for i := range ch.Booths {
			ch.Booths[i].ExhibitionID = p.ExhibitionID
			ch.Booths[i].ParticipationID = p.ID
		}
		if err = tx.Create(&ch.Booths).Error; err != nil {
			return err
		}
	}

	if err = tx.Omit("Activities", "created_at").Save(p).Error; err != nil {
		return err
	}

	if ch.ReplaceActivities {
		if err = tx.Model(p).Omit("Activities.*").Association("Activities").Replace(p.Activities); err != nil {
			return err
		}
	}

	return addVisitors(tx, p.ExhibitionID, ch.AddVisitors)
}

type BoothDAO struct {
	db *gorm.DB
}

func NewBoothDAO(db *gorm.DB) *BoothDAO {
	return &BoothDAO{
		db: db,
	}
}

func (d *BoothDAO) ListByExhibition(ctx context.Context, exhibitionID uint) ([]Booth, error) {
	var booths []Booth

	err := d.db.WithContext(ctx).Where("exhibition_id = ?", exhibitionID).
		Order("zone, booth_number, id").Find(&booths).Error
	if err != nil {
		return nil, err
	}

	return booths, nil
}

// Reassign rewrites zone and number of the given booths, and the schedule when schedule is
// non-nil, as long as the exhibition is still in one of statuses.
func (d *BoothDAO) Reassign(ctx context.Context, exhibitionID uint, booths []Booth, schedule datatypes.JSON, statuses []string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockExhibition(tx, exhibitionID, statuses...); err != nil {
			return err
		}

		for _, b := range booths {
			result := tx.Model(&Booth{}).
				Where("id = ? AND exhibition_id = ?", b.ID, exhibitionID).
				Updates(map[string]interface{}{"zone": b.Zone, "booth_number": b.BoothNumber})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("booth %d -> %w", b.ID, ErrBoothNotFound)
			}
		}

		if schedule != nil {
			return tx.Model(&Exhibition{}).Where("id = ?", exhibitionID).Update("schedule_json", schedule).Error
		}

		return nil
	})
}

// SumMaxParticipants is the number of visitor seats the exhibition's booths take up.
func (d *BoothDAO) SumMaxParticipants(ctx context.Context, exhibitionID uint) (int, error) {
	var total int

	err := d.db.WithContext(ctx).Model(&Booth{}).
		Where("exhibition_id = ?", exhibitionID).
		Select("COALESCE(SUM(max_participants), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}
