package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

// StudentService handles student visits: registration, approval by the organizer,
// attendance on the day and feedback afterwards.
type StudentService struct {
	repo      StudentRepository
	exRepo    ExhibitionRepository
	boothRepo BoothRepository
	owners    OwnerRepository
	now       func() time.Time
}

func NewStudentService(repo StudentRepository, exRepo ExhibitionRepository, boothRepo BoothRepository, owners OwnerRepository) *StudentService {
	return &StudentService{
		repo:      repo,
		exRepo:    exRepo,
		boothRepo: boothRepo,
		owners:    owners,
		now:       time.Now,
	}
}

func (s *StudentService) Register(ctx context.Context, actor domain.Actor, exhibitionID uint) (domain.StudentRegistration, error) {
	if err := authz.Check(actor, authz.OwnerChain{StudentID: actor.UserID}, authz.ActAsStudent); err != nil {
		return domain.StudentRegistration{}, err
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = requireStatus(ex, domain.ExhibitionConfirmed, domain.ExhibitionActive); err != nil {
		return domain.StudentRegistration{}, err
	}

	_, err = s.repo.FindLive(ctx, exhibitionID, actor.UserID)
	if err == nil {
		return domain.StudentRegistration{}, fmt.Errorf("student %d -> %w", actor.UserID, ErrAlreadyExists)
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.StudentRegistration{}, fmt.Errorf("s.repo.FindLive -> %w", err)
	}

	if err = s.checkOccupancy(ctx, ex); err != nil {
		return domain.StudentRegistration{}, err
	}

	created, err := s.repo.Create(ctx, domain.StudentRegistration{
		ExhibitionID: exhibitionID,
		StudentID:    actor.UserID,
		Status:       domain.RegistrationRegistered,
		RegisteredAt: s.now(),
	})
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *StudentService) Approve(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error) {
	reg, ex, err := s.load(ctx, actor, registrationID, authz.ManageExhibition)
	if err != nil {
		return domain.StudentRegistration{}, err
	}

	if err = requireStatus(ex, domain.ExhibitionConfirmed, domain.ExhibitionActive); err != nil {
		return domain.StudentRegistration{}, err
	}
	if reg.Status != domain.RegistrationRegistered || reg.Approved {
		return domain.StudentRegistration{}, &domain.StateError{Entity: "student registration", Current: registrationState(reg), Want: []string{"REGISTERED and not approved"}}
	}
	if err = s.checkOccupancy(ctx, ex); err != nil {
		return domain.StudentRegistration{}, err
	}

	now := s.now()
	next := reg
	next.Approved = true
	next.ApprovedAt = &now

	return s.update(ctx, next, reg, 0)
}

// Cancel withdraws a registration before the exhibition opens.
func (s *StudentService) Cancel(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error) {
	reg, ex, err := s.load(ctx, actor, registrationID, authz.ManageStudentRegistration)
	if err != nil {
		return domain.StudentRegistration{}, err
	}

	if err = ex.Require(domain.ExhibitionConfirmed); err != nil {
		return domain.StudentRegistration{}, err
	}
	if reg.Status != domain.RegistrationRegistered {
		return domain.StudentRegistration{}, &domain.StateError{Entity: "student registration", Current: string(reg.Status), Want: []string{string(domain.RegistrationRegistered)}}
	}

	next := reg
	next.Status = domain.RegistrationCancelled

	return s.update(ctx, next, reg, 0)
}

// AttendanceResult reports a bulk attendance call: registrations that were marked and the ones
// left untouched, each with the reason.
type AttendanceResult struct {
	Marked  []domain.StudentRegistration `json:"marked"`
	Skipped []SkippedRegistration        `json:"skipped"`
}

type SkippedRegistration struct {
	RegistrationID uint   `json:"registration_id"`
	Reason         string `json:"reason"`
}

// MarkAttendance records whether approved students showed up. Each attendance adds one visitor.
// Registrations that are unknown, belong elsewhere or are not approved are skipped and reported;
// the rest are still marked. Only infrastructure failures abort the call.
func (s *StudentService) MarkAttendance(ctx context.Context, actor domain.Actor, exhibitionID uint, registrationIDs []uint, attended bool) (AttendanceResult, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return AttendanceResult{}, err
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = requireStatus(ex, domain.ExhibitionActive); err != nil {
		return AttendanceResult{}, err
	}

	status, visitors := domain.RegistrationNoShow, 0
	if attended {
		status, visitors = domain.RegistrationAttended, 1
	}

	now := s.now()
	result := AttendanceResult{
		Marked:  make([]domain.StudentRegistration, 0, len(registrationIDs)),
		Skipped: []SkippedRegistration{},
	}
	for _, id := range registrationIDs {
		updated, err := s.markOne(ctx, exhibitionID, id, status, visitors, now)
		if err != nil {
			if !skippable(err) {
				return result, err
			}

			result.Skipped = append(result.Skipped, SkippedRegistration{RegistrationID: id, Reason: err.Error()})
			continue
		}
		result.Marked = append(result.Marked, updated)
	}

	if len(result.Skipped) > 0 {
		zap.L().Warn("attendance partially marked",
			zap.Uint("exhibition_id", exhibitionID),
			zap.Int("marked", len(result.Marked)),
			zap.Int("skipped", len(result.Skipped)),
		)
	}

	return result, nil
}

func (s *StudentService) markOne(ctx context.Context, exhibitionID, id uint, status domain.RegistrationStatus, visitors int, now time.Time) (domain.StudentRegistration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if reg.ExhibitionID != exhibitionID {
		return domain.StudentRegistration{}, fmt.Errorf("registration %d -> %w", id, ErrNotFound)
	}
	if reg.Status != domain.RegistrationRegistered || !reg.Approved {
		return domain.StudentRegistration{}, &domain.StateError{Entity: "student registration", Current: registrationState(reg), Want: []string{"REGISTERED and approved"}}
	}

	next := reg
	next.Status = status
	if status == domain.RegistrationAttended {
		next.AttendedAt = &now
	}

	return s.update(ctx, next, reg, visitors)
}

// skippable reports whether err concerns one registration rather than the whole call.
func skippable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrCapacityExceeded)
}

func (s *StudentService) SubmitFeedback(ctx context.Context, actor domain.Actor, exhibitionID uint, rating int, comments string) (domain.ExhibitionFeedback, error) {
	if err := authz.Check(actor, authz.OwnerChain{StudentID: actor.UserID}, authz.ActAsStudent); err != nil {
		return domain.ExhibitionFeedback{}, err
	}
	if rating < 1 || rating > 5 {
		return domain.ExhibitionFeedback{}, domain.Invalid("rating must be between 1 and 5")
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return domain.ExhibitionFeedback{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = requireStatus(ex, domain.ExhibitionCompleted); err != nil {
		return domain.ExhibitionFeedback{}, err
	}

	reg, err := s.repo.FindLive(ctx, exhibitionID, actor.UserID)
	if err != nil {
		return domain.ExhibitionFeedback{}, fmt.Errorf("s.repo.FindLive -> %w", err)
	}
	if reg.Status != domain.RegistrationAttended {
		return domain.ExhibitionFeedback{}, &domain.StateError{Entity: "student registration", Current: string(reg.Status), Want: []string{string(domain.RegistrationAttended)}}
	}

	fb, err := s.repo.CreateFeedback(ctx, domain.ExhibitionFeedback{
		ExhibitionID: exhibitionID,
		StudentID:    actor.UserID,
		Rating:       rating,
		Comments:     comments,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return domain.ExhibitionFeedback{}, fmt.Errorf("s.repo.CreateFeedback -> %w", err)
	}

	return fb, nil
}

func (s *StudentService) ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error) {
	feedback, err := s.repo.ListFeedback(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListFeedback -> %w", err)
	}

	return feedback, nil
}

func (s *StudentService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.StudentRegistration, error) {
	regs, err := s.repo.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByStudent -> %w", err)
	}

	return regs, nil
}

func (s *StudentService) load(ctx context.Context, actor domain.Actor, id uint, capability authz.Capability) (domain.StudentRegistration, domain.Exhibition, error) {
	chain, err := s.owners.RegistrationOwners(ctx, id)
	if err != nil {
		return domain.StudentRegistration{}, domain.Exhibition{}, fmt.Errorf("s.owners.RegistrationOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, capability); err != nil {
		return domain.StudentRegistration{}, domain.Exhibition{}, err
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StudentRegistration{}, domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	ex, err := s.exRepo.FindByID(ctx, reg.ExhibitionID)
	if err != nil {
		return domain.StudentRegistration{}, domain.Exhibition{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}

	return reg, ex, nil
}

func (s *StudentService) update(ctx context.Context, next, from domain.StudentRegistration, visitors int) (domain.StudentRegistration, error) {
	updated, err := s.repo.Update(ctx, next, from, visitors)
	if err != nil {
		return domain.StudentRegistration{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// checkOccupancy fails once approved students and booth seats fill the visitor capacity.
// An exhibition without a capacity is unbounded.
func (s *StudentService) checkOccupancy(ctx context.Context, ex domain.Exhibition) error {
	if ex.VisitorCapacity <= 0 {
		return nil
	}

	students, err := s.repo.CountApproved(ctx, ex.ID)
	if err != nil {
		return fmt.Errorf("s.repo.CountApproved -> %w", err)
	}
	seats, err := s.boothRepo.SumMaxParticipants(ctx, ex.ID)
	if err != nil {
		return fmt.Errorf("s.boothRepo.SumMaxParticipants -> %w", err)
	}

	occupancy := domain.Occupancy{ApprovedStudents: students, BoothSeats: seats}
	if occupancy.Total() >= ex.VisitorCapacity {
		return fmt.Errorf("visitor capacity %d reached -> %w", ex.VisitorCapacity, ErrCapacityExceeded)
	}

	return nil
}

// requireStatus is Exhibition.Require without the locked-phase shortcut, for operations that
// belong to the live phase.
func requireStatus(ex domain.Exhibition, want ...domain.ExhibitionStatus) error {
	for _, s := range want {
		if ex.Status == s {
			return nil
		}
	}

	names := make([]string, len(want))
	for i, s := range want {
		names[i] = string(s)
	}

	return &domain.StateError{Entity: "exhibition", Current: string(ex.Status), Want: names}
}

func registrationState(reg domain.StudentRegistration) string {
	if reg.Approved {
		return string(reg.Status) + " (approved)"
	}

	return string(reg.Status)
}
