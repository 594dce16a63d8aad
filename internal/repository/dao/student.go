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
	ErrRegistrationNotFound = fmt.Errorf("student registration %w", ErrNotFound)
	ErrRegistrationExists   = errors.New("student already registered")
	ErrFeedbackExists       = errors.New("feedback already submitted")
)

const (
	registrationsLiveIndex = "idx_student_registrations_live"
	feedbackStudentIndex   = "idx_exhibition_feedbacks_student"
)

type StudentRegistration struct {
	ID           uint      `gorm:"primaryKey"`
	ExhibitionID uint      `gorm:"not null;index;uniqueIndex:idx_student_registrations_live,where:status <> 'CANCELLED'"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_student_registrations_live,where:status <> 'CANCELLED'"`
	Student      User      `gorm:"foreignKey:StudentID"`
	Status       string    `gorm:"not null"`
	Approved     bool      `gorm:"not null;default:false"`
	RegisteredAt time.Time `gorm:"not null"`
	ApprovedAt   *time.Time
	AttendedAt   *time.Time
}

type ExhibitionFeedback struct {
	ID           uint   `gorm:"primaryKey"`
	ExhibitionID uint   `gorm:"not null;uniqueIndex:idx_exhibition_feedbacks_student"`
	StudentID    uint   `gorm:"not null;uniqueIndex:idx_exhibition_feedbacks_student"`
	Rating       int    `gorm:"not null;check:chk_exhibition_feedbacks_rating,rating BETWEEN 1 AND 5"`
	Comments     string `gorm:"type:text"`
	CreatedAt    time.Time
}

type StudentDAO struct {
	db *gorm.DB
}

func NewStudentDAO(db *gorm.DB) *StudentDAO {
	return &StudentDAO{
		db: db,
	}
}

func (d *StudentDAO) Insert(ctx context.Context, reg StudentRegistration) (StudentRegistration, error) {
	if err := d.db.WithContext(ctx).Omit("Student").Create(&reg).Error; err != nil {
		if isUniqueViolation(err, registrationsLiveIndex) {
			return StudentRegistration{}, ErrRegistrationExists
		}

		return StudentRegistration{}, err
	}

	return reg, nil
}

func (d *StudentDAO) FindByID(ctx context.Context, id uint) (StudentRegistration, error) {
	var reg StudentRegistration
	if err := first(d.db.WithContext(ctx), &reg, id, ErrRegistrationNotFound); err != nil {
		return StudentRegistration{}, err
	}

	return reg, nil
}

// FindLive returns the student's registration for the exhibition that is not cancelled.
func (d *StudentDAO) FindLive(ctx context.Context, exhibitionID, studentID uint) (StudentRegistration, error) {
	var reg StudentRegistration

	err := d.db.WithContext(ctx).
		Where("exhibition_id = ? AND student_id = ? AND status <> ?", exhibitionID, studentID, "CANCELLED").
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StudentRegistration{}, ErrRegistrationNotFound
		}

		return StudentRegistration{}, err
	}

	return reg, nil
}

func (d *StudentDAO) ListByStudent(ctx context.Context, studentID uint) ([]StudentRegistration, error) {
	var regs []StudentRegistration

	err := d.db.WithContext(ctx).Where("student_id = ?", studentID).Order("registered_at DESC").Find(&regs).Error
	if err != nil {
		return nil, err
	}

	return regs, nil
}

func (d *StudentDAO) CountApproved(ctx context.Context, exhibitionID uint) (int64, error) {
	var n int64

	err := d.db.WithContext(ctx).Model(&StudentRegistration{}).
		Where("exhibition_id = ? AND approved = ? AND status <> ?", exhibitionID, true, "CANCELLED").
		Count(&n).Error
	if err != nil {
		return 0, err
	}

	return n, nil
}

// Update writes reg while the stored row is still in status from, adding visitors to the
// exhibition's actual visitor count in the same transaction.
func (d *StudentDAO) Update(ctx context.Context, reg StudentRegistration, from string, fromApproved bool, visitors int) (StudentRegistration, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored StudentRegistration
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stored, reg.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}

			return err
		}
		if stored.Status != from || stored.Approved != fromApproved {
			return ErrStatusChanged
		}

		if err = tx.Omit("Student").Save(&reg).Error; err != nil {
			return err
		}

		return addVisitors(tx, reg.ExhibitionID, visitors)
	})
	if err != nil {
		return StudentRegistration{}, err
	}

	return reg, nil
}

func (d *StudentDAO) InsertFeedback(ctx context.Context, fb ExhibitionFeedback) (ExhibitionFeedback, error) {
	if err := d.db.WithContext(ctx).Create(&fb).Error; err != nil {
		if isUniqueViolation(err, feedbackStudentIndex) {
			return ExhibitionFeedback{}, ErrFeedbackExists
		}

		return ExhibitionFeedback{}, err
	}

	return fb, nil
}

func (d *StudentDAO) ListFeedback(ctx context.Context, exhibitionID uint) ([]ExhibitionFeedback, error) {
	var feedback []ExhibitionFeedback

	err := d.db.WithContext(ctx).Where("exhibition_id = ?", exhibitionID).Order("created_at DESC").Find(&feedback).Error
	if err != nil {
		return nil, err
	}

	return feedback, nil
}
