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
	ErrExhibitionNotFound = fmt.Errorf("exhibition %w", ErrNotFound)
	ErrFinancialNotFound  = fmt.Errorf("financial record %w", ErrNotFound)
	ErrFinancialExists    = errors.New("financial record already exists")
	// ErrStatusChanged means the row left the status the caller observed before the write landed.
	ErrStatusChanged = errors.New("status changed concurrently")
)

type Exhibition struct {
	ID                     uint         `gorm:"primaryKey"`
	OrganizationID         uint         `gorm:"not null;index"`
	Organization           Organization `gorm:"foreignKey:OrganizationID"`
	Title                  string       `gorm:"not null"`
	Description            string       `gorm:"type:text"`
	Theme                  string
	Status                 string    `gorm:"not null;index"`
	StartDate              time.Time `gorm:"type:date;not null"`
	EndDate                time.Time `gorm:"type:date;not null"`
	StartTime              string
	EndTime                string
	TotalAvailableBooths   int     `gorm:"not null;default:0"`
	StandardBoothSqm       float64 `gorm:"not null;default:9"`
	MaxBoothsPerUniversity int     `gorm:"not null;default:0"`
	MaxBoothsPerProvider   int     `gorm:"not null;default:0"`
	BoothsReserved         int     `gorm:"not null;default:0;check:chk_exhibitions_booths_reserved,booths_reserved >= 0"`
	ExpectedVisitors       int
	ActualVisitors         int `gorm:"not null;default:0"`
	VisitorCapacity        int `gorm:"not null;default:0"`
	ScheduleJSON           datatypes.JSON `gorm:"type:jsonb"`
	FinalizationDeadline   *time.Time
	CancelReason           string `gorm:"type:text"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type ExhibitionFinancial struct {
	ID            uint            `gorm:"primaryKey"`
	ExhibitionID  uint            `gorm:"not null;uniqueIndex"`
	TotalRevenue  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalExpenses decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetProfit     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CalculatedAt  time.Time       `gorm:"not null"`
}

type ExhibitionDAO struct {
	db *gorm.DB
}

func NewExhibitionDAO(db *gorm.DB) *ExhibitionDAO {
	return &ExhibitionDAO{
		db: db,
	}
}

func (d *ExhibitionDAO) Insert(ctx context.Context, ex Exhibition) (Exhibition, error) {
	if err := d.db.WithContext(ctx).Omit("Organization").Create(&ex).Error; err != nil {
		return Exhibition{}, err
	}

	return ex, nil
}

func (d *ExhibitionDAO) FindByID(ctx context.Context, id uint) (Exhibition, error) {
	var ex Exhibition
	if err := first(d.db.WithContext(ctx), &ex, id, ErrExhibitionNotFound); err != nil {
		return Exhibition{}, err
	}

	return ex, nil
}

// List returns exhibitions, restricted to one organization when organizationID is non-zero.
func (d *ExhibitionDAO) List(ctx context.Context, organizationID uint) ([]Exhibition, error) {
	var exhibitions []Exhibition

	q := d.db.WithContext(ctx).Order("start_date DESC, id DESC")
	if organizationID != 0 {
		q = q.Where("organization_id = ?", organizationID)
	}
	if err := q.Find(&exhibitions).Error; err != nil {
		return nil, err
	}

	return exhibitions, nil
}

// ExhibitionTransition is the outcome of a TransitionPlan: the exhibition to write, the
// participation changes that go with it and an optional financial record.
type ExhibitionTransition struct {
	Exhibition Exhibition
	Changes    []ParticipationChange
	Financial  *ExhibitionFinancial
}

// TransitionPlan decides a transition from the exhibition, its participations and its booths as
// read under the exhibition row lock. A returned error rolls the transaction back.
type TransitionPlan func(ex Exhibition, participations []Participation, booths []Booth) (ExhibitionTransition, error)

// Transition locks the exhibition, hands the locked state to plan and applies what it decides,
// all in one transaction. Every participation insert and change takes the same lock, so the
// state plan sees cannot move until the transaction ends.
func (d *ExhibitionDAO) Transition(ctx context.Context, id uint, plan TransitionPlan) (Exhibition, error) {
	var ex Exhibition

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockExhibition(tx, id)
		if err != nil {
			return err
		}

		var participations []Participation
		err = tx.Preload("Activities").Where("exhibition_id = ?", id).Order("id").Find(&participations).Error
		if err != nil {
			return err
		}

		var booths []Booth
		err = tx.Where("exhibition_id = ?", id).Order("zone, booth_number, id").Find(&booths).Error
		if err != nil {
			return err
		}

		t, err := plan(locked, participations, booths)
		if err != nil {
			return err
		}

		for i := range t.Changes {
			if err = applyChange(tx, &t.Changes[i]); err != nil {
				return fmt.Errorf("participation %d -> %w", t.Changes[i].Participation.ID, err)
			}
		}

		t.Exhibition.ID = id
		if err = updateExhibition(tx, t.Exhibition); err != nil {
			return err
		}

		if t.Financial != nil {
			if err = tx.Create(t.Financial).Error; err != nil {
				if isUniqueViolation(err, "") {
					return ErrFinancialExists
				}

				return err
			}
		}

		return tx.First(&ex, id).Error
	})
	if err != nil {
		return Exhibition{}, err
	}

	return ex, nil
}

func (d *ExhibitionDAO) FindFinancial(ctx context.Context, exhibitionID uint) (ExhibitionFinancial, error) {
	var fin ExhibitionFinancial

	err := d.db.WithContext(ctx).Where("exhibition_id = ?", exhibitionID).First(&fin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExhibitionFinancial{}, ErrFinancialNotFound
		}

		return ExhibitionFinancial{}, err
	}

	return fin, nil
}

func (d *ExhibitionDAO) ListFinancials(ctx context.Context, exhibitionIDs []uint) ([]ExhibitionFinancial, error) {
	var financials []ExhibitionFinancial
	if len(exhibitionIDs) == 0 {
		return financials, nil
	}

	if err := d.db.WithContext(ctx).Where("exhibition_id IN ?", exhibitionIDs).Find(&financials).Error; err != nil {
		return nil, err
	}

	return financials, nil
}

// ExhibitionStatusError is returned when a locked exhibition is in none of the statuses the
// caller expected.
type ExhibitionStatusError struct {
	Current string
}

func (e *ExhibitionStatusError) Error() string {
	return fmt.Sprintf("exhibition is %s: %s", e.Current, ErrStatusChanged)
}

func (e *ExhibitionStatusError) Unwrap() error {
	return ErrStatusChanged
}

// lockExhibition takes the row lock every capacity and status change of an exhibition goes
// through. A non-empty status in want must match the locked row.
func lockExhibition(tx *gorm.DB, id uint, want ...string) (Exhibition, error) {
	var ex Exhibition

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ex, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Exhibition{}, ErrExhibitionNotFound
		}

		return Exhibition{}, err
	}

	if len(want) == 0 {
		return ex, nil
	}
	for _, s := range want {
		if ex.Status == s {
			return ex, nil
		}
	}

	return Exhibition{}, &ExhibitionStatusError{Current: ex.Status}
}

// lifecycleColumns are the exhibition columns a lifecycle step may rewrite. Everything else is
// fixed at creation or moved by relative updates.
var lifecycleColumns = []string{
	"status",
	"total_available_booths",
	"visitor_capacity",
	"schedule_json",
	"finalization_deadline",
	"cancel_reason",
	"updated_at",
}

func updateExhibition(tx *gorm.DB, ex Exhibition) error {
	return tx.Model(&Exhibition{ID: ex.ID}).Select(lifecycleColumns).Updates(&ex).Error
}

func addVisitors(tx *gorm.DB, exhibitionID uint, n int) error {
	if n == 0 {
		return nil
	}

	return tx.Model(&Exhibition{}).Where("id = ?", exhibitionID).
		UpdateColumn("actual_visitors", gorm.Expr("actual_visitors + ?", n)).Error
}

// CountByStatus returns how many exhibitions are in each status, restricted to one organization
// when organizationID is non-zero.
func (d *ExhibitionDAO) CountByStatus(ctx context.Context, organizationID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}

	q := d.db.WithContext(ctx).Model(&Exhibition{}).Select("status, COUNT(*) AS total").Group("status")
	if organizationID != 0 {
		q = q.Where("organization_id = ?", organizationID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}

	return counts, nil
}

// ListIDs returns the ids of the exhibitions List would return.
func (d *ExhibitionDAO) ListIDs(ctx context.Context, organizationID uint) ([]uint, error) {
	var ids []uint

	q := d.db.WithContext(ctx).Model(&Exhibition{})
	if organizationID != 0 {
		q = q.Where("organization_id = ?", organizationID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}
