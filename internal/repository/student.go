package repository

import (
	"context"
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type StudentDAO interface {
	Insert(ctx context.Context, reg dao.StudentRegistration) (dao.StudentRegistration, error)
	FindByID(ctx context.Context, id uint) (dao.StudentRegistration, error)
	FindLive(ctx context.Context, exhibitionID, studentID uint) (dao.StudentRegistration, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dao.StudentRegistration, error)
	CountApproved(ctx context.Context, exhibitionID uint) (int64, error)
	Update(ctx context.Context, reg dao.StudentRegistration, from string, fromApproved bool, visitors int) (dao.StudentRegistration, error)
	InsertFeedback(ctx context.Context, fb dao.ExhibitionFeedback) (dao.ExhibitionFeedback, error)
	ListFeedback(ctx context.Context, exhibitionID uint) ([]dao.ExhibitionFeedback, error)
}

type StudentRepository struct {
	dao StudentDAO
}

func NewStudentRepository(dao StudentDAO) *StudentRepository {
	return &StudentRepository{
		dao: dao,
	}
}

func (r *StudentRepository) Create(ctx context.Context, reg domain.StudentRegistration) (domain.StudentRegistration, error) {
	created, err := r.dao.Insert(ctx, registrationToDao(reg))
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("r.dao.Insert -> %w", mapErr(err))
	}

	return registrationToDomain(created), nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id uint) (domain.StudentRegistration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("r.dao.FindByID -> %w", mapErr(err))
	}

	return registrationToDomain(found), nil
}

func (r *StudentRepository) FindLive(ctx context.Context, exhibitionID, studentID uint) (domain.StudentRegistration, error) {
	found, err := r.dao.FindLive(ctx, exhibitionID, studentID)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("r.dao.FindLive -> %w", mapErr(err))
	}

	return registrationToDomain(found), nil
}

func (r *StudentRepository) ListByStudent(ctx context.Context, studentID uint) ([]domain.StudentRegistration, error) {
	found, err := r.dao.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByStudent -> %w", mapErr(err))
	}

	regs := make([]domain.StudentRegistration, len(found))
	for i, reg := range found {
		regs[i] = registrationToDomain(reg)
	}

	return regs, nil
}

func (r *StudentRepository) CountApproved(ctx context.Context, exhibitionID uint) (int, error) {
	n, err := r.dao.CountApproved(ctx, exhibitionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountApproved -> %w", mapErr(err))
	}

	return int(n), nil
}

// Update writes reg if the stored registration still matches from, bumping the exhibition's
// visitor count by visitors.
func (r *StudentRepository) Update(ctx context.Context, reg domain.StudentRegistration, from domain.StudentRegistration, visitors int) (domain.StudentRegistration, error) {
	updated, err := r.dao.Update(ctx, registrationToDao(reg), string(from.Status), from.Approved, visitors)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("r.dao.Update -> %w", mapErr(err))
	}

	return registrationToDomain(updated), nil
}

func (r *StudentRepository) CreateFeedback(ctx context.Context, fb domain.ExhibitionFeedback) (domain.ExhibitionFeedback, error) {
	created, err := r.dao.InsertFeedback(ctx, dao.ExhibitionFeedback{
		ExhibitionID: fb.ExhibitionID,
		StudentID:    fb.StudentID,
		Rating:       fb.Rating,
		Comments:     fb.Comments,
		CreatedAt:    fb.CreatedAt,
	})
	if err != nil {
		return domain.ExhibitionFeedback{}, fmt.Errorf("r.dao.InsertFeedback -> %w", mapErr(err))
	}

	return feedbackToDomain(created), nil
}

func (r *StudentRepository) ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error) {
	found, err := r.dao.ListFeedback(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListFeedback -> %w", mapErr(err))
	}

	feedback := make([]domain.ExhibitionFeedback, len(found))
	for i, fb := range found {
		feedback[i] = feedbackToDomain(fb)
	}

	return feedback, nil
}

func registrationToDao(reg domain.StudentRegistration) dao.StudentRegistration {
	return dao.StudentRegistration{
		ID:           reg.ID,
		ExhibitionID: reg.ExhibitionID,
		StudentID:    reg.StudentID,
		Status:       string(reg.Status),
		Approved:     reg.Approved,
		RegisteredAt: reg.RegisteredAt,
		ApprovedAt:   reg.ApprovedAt,
		AttendedAt:   reg.AttendedAt,
	}
}

func registrationToDomain(reg dao.StudentRegistration) domain.StudentRegistration {
	return domain.StudentRegistration{
		ID:           reg.ID,
		ExhibitionID: reg.ExhibitionID,
		StudentID:    reg.StudentID,
		Status:       domain.RegistrationStatus(reg.Status),
		Approved:     reg.Approved,
		RegisteredAt: reg.RegisteredAt,
		ApprovedAt:   reg.ApprovedAt,
		AttendedAt:   reg.AttendedAt,
	}
}

func feedbackToDomain(fb dao.ExhibitionFeedback) domain.ExhibitionFeedback {
	return domain.ExhibitionFeedback{
		ID:           fb.ID,
		ExhibitionID: fb.ExhibitionID,
		StudentID:    fb.StudentID,
		Rating:       fb.Rating,
		Comments:     fb.Comments,
		CreatedAt:    fb.CreatedAt,
	}
}
