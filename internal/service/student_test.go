package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

func newStudentTest() (*StudentService, *MockStudentRepo, *MockExhibitionRepo, *MockBoothRepo, *MockOwnerRepo) {
	repo := new(MockStudentRepo)
	exRepo := new(MockExhibitionRepo)
	boothRepo := new(MockBoothRepo)
	owners := new(MockOwnerRepo)

	s := NewStudentService(repo, exRepo, boothRepo, owners)
	s.now = fixedClock

	return s, repo, exRepo, boothRepo, owners
}

func exhibitionIn(status domain.ExhibitionStatus) domain.Exhibition {
	ex := planningExhibition()
	ex.Status = status
	ex.VisitorCapacity = 100

	return ex
}

func TestStudentService_Register(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		setup   func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo)
		wantErr error
	}{
		{
			name:  "registers while confirmed",
			actor: student,
			setup: func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo) {
				exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionConfirmed), nil)
				repo.On("FindLive", mock.Anything, uint(10), student.UserID).Return(domain.StudentRegistration{}, ErrNotFound)
				repo.On("CountApproved", mock.Anything, uint(10)).Return(40, nil)
				boothRepo.On("SumMaxParticipants", mock.Anything, uint(10)).Return(30, nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(reg domain.StudentRegistration) bool {
					return reg.Status == domain.RegistrationRegistered && !reg.Approved && reg.StudentID == student.UserID
				})).Return(domain.StudentRegistration{ID: 1, Status: domain.RegistrationRegistered}, nil)
			},
		},
		{
			name:  "already registered",
			actor: student,
			setup: func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo) {
				exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)
				repo.On("FindLive", mock.Anything, uint(10), student.UserID).Return(domain.StudentRegistration{ID: 1}, nil)
			},
			wantErr: ErrAlreadyExists,
		},
		{
			name:  "visitor capacity reached",
			actor: student,
			setup: func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo) {
				exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)
				repo.On("FindLive", mock.Anything, uint(10), student.UserID).Return(domain.StudentRegistration{}, ErrNotFound)
				repo.On("CountApproved", mock.Anything, uint(10)).Return(70, nil)
				boothRepo.On("SumMaxParticipants", mock.Anything, uint(10)).Return(30, nil)
			},
			wantErr: ErrCapacityExceeded,
		},
		{
			name:  "not open for students yet",
			actor: student,
			setup: func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo) {
				exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionPlanning), nil)
			},
			wantErr: ErrInvalidState,
		},
		{
			name:    "only students register",
			actor:   orgOwner,
			setup:   func(repo *MockStudentRepo, exRepo *MockExhibitionRepo, boothRepo *MockBoothRepo) {},
			wantErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, exRepo, boothRepo, _ := newStudentTest()
			tt.setup(repo, exRepo, boothRepo)

			_, err := s.Register(context.Background(), tt.actor, 10)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			exRepo.AssertExpectations(t)
			boothRepo.AssertExpectations(t)
		})
	}
}

func TestStudentService_Cancel(t *testing.T) {
	reg := domain.StudentRegistration{ID: 1, ExhibitionID: 10, StudentID: student.UserID, Status: domain.RegistrationRegistered}
	chain := authz.OwnerChain{OrganizationOwnerID: orgOwner.UserID, StudentID: student.UserID}

	t.Run("student withdraws before opening", func(t *testing.T) {
		s, repo, exRepo, _, owners := newStudentTest()
		owners.On("RegistrationOwners", mock.Anything, reg.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, reg.ID).Return(reg, nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionConfirmed), nil)
		repo.On("Update", mock.Anything,
			mock.MatchedBy(func(r domain.StudentRegistration) bool { return r.Status == domain.RegistrationCancelled }),
			reg, 0,
		).Return(domain.StudentRegistration{ID: reg.ID, Status: domain.RegistrationCancelled}, nil)

		got, err := s.Cancel(context.Background(), student, reg.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationCancelled, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("locked once the exhibition runs", func(t *testing.T) {
		s, repo, exRepo, _, owners := newStudentTest()
		owners.On("RegistrationOwners", mock.Anything, reg.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, reg.ID).Return(reg, nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)

		_, err := s.Cancel(context.Background(), student, reg.ID)

		assert.ErrorIs(t, err, ErrLockedPhase)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("another student", func(t *testing.T) {
		s, _, _, _, owners := newStudentTest()
		owners.On("RegistrationOwners", mock.Anything, reg.ID).Return(chain, nil)

		_, err := s.Cancel(context.Background(), domain.Actor{UserID: 77, Role: domain.RoleStudent}, reg.ID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestStudentService_MarkAttendance(t *testing.T) {
	t.Run("invalid registrations are skipped and the rest marked", func(t *testing.T) {
		s, repo, exRepo, _, owners := newStudentTest()
		first := domain.StudentRegistration{ID: 1, ExhibitionID: 10, Status: domain.RegistrationRegistered, Approved: true}
		unapproved := domain.StudentRegistration{ID: 2, ExhibitionID: 10, Status: domain.RegistrationRegistered}
		third := domain.StudentRegistration{ID: 3, ExhibitionID: 10, Status: domain.RegistrationRegistered, Approved: true}
		elsewhere := domain.StudentRegistration{ID: 4, ExhibitionID: 11, Status: domain.RegistrationRegistered, Approved: true}

		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)
		repo.On("FindByID", mock.Anything, uint(1)).Return(first, nil)
		repo.On("FindByID", mock.Anything, uint(2)).Return(unapproved, nil)
		repo.On("FindByID", mock.Anything, uint(3)).Return(third, nil)
		repo.On("FindByID", mock.Anything, uint(4)).Return(elsewhere, nil)
		repo.On("FindByID", mock.Anything, uint(5)).Return(domain.StudentRegistration{}, ErrNotFound)
		for _, reg := range []domain.StudentRegistration{first, third} {
			repo.On("Update", mock.Anything,
				mock.MatchedBy(func(r domain.StudentRegistration) bool {
					return r.Status == domain.RegistrationAttended && r.AttendedAt != nil
				}),
				reg, 1,
			).Return(domain.StudentRegistration{ID: reg.ID, Status: domain.RegistrationAttended}, nil)
		}

		got, err := s.MarkAttendance(context.Background(), orgOwner, 10, []uint{1, 2, 3, 4, 5}, true)

		require.NoError(t, err)
		require.Len(t, got.Marked, 2)
		assert.Equal(t, uint(1), got.Marked[0].ID)
		assert.Equal(t, uint(3), got.Marked[1].ID)
		require.Len(t, got.Skipped, 3)
		assert.Equal(t, uint(2), got.Skipped[0].RegistrationID)
		assert.Contains(t, got.Skipped[0].Reason, "REGISTERED and approved")
		assert.Equal(t, uint(4), got.Skipped[1].RegistrationID)
		assert.Equal(t, uint(5), got.Skipped[2].RegistrationID)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure aborts", func(t *testing.T) {
		s, repo, exRepo, _, owners := newStudentTest()
		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)
		repo.On("FindByID", mock.Anything, uint(1)).Return(domain.StudentRegistration{}, errors.New("connection reset"))

		_, err := s.MarkAttendance(context.Background(), orgOwner, 10, []uint{1, 2}, false)

		assert.ErrorContains(t, err, "connection reset")
		repo.AssertNotCalled(t, "FindByID", mock.Anything, uint(2))
	})

	t.Run("no shows add no visitors", func(t *testing.T) {
		s, repo, exRepo, _, owners := newStudentTest()
		reg := domain.StudentRegistration{ID: 1, ExhibitionID: 10, Status: domain.RegistrationRegistered, Approved: true}
		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionActive), nil)
		repo.On("FindByID", mock.Anything, uint(1)).Return(reg, nil)
		repo.On("Update", mock.Anything,
			mock.MatchedBy(func(r domain.StudentRegistration) bool {
				return r.Status == domain.RegistrationNoShow && r.AttendedAt == nil
			}),
			reg, 0,
		).Return(domain.StudentRegistration{ID: 1, Status: domain.RegistrationNoShow}, nil)

		got, err := s.MarkAttendance(context.Background(), orgOwner, 10, []uint{1}, false)

		require.NoError(t, err)
		assert.Len(t, got.Marked, 1)
		assert.Empty(t, got.Skipped)
		repo.AssertExpectations(t)
	})
}

func TestStudentService_SubmitFeedback(t *testing.T) {
	t.Run("attended student rates the exhibition", func(t *testing.T) {
		s, repo, exRepo, _, _ := newStudentTest()
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionCompleted), nil)
		repo.On("FindLive", mock.Anything, uint(10), student.UserID).
			Return(domain.StudentRegistration{ID: 1, Status: domain.RegistrationAttended}, nil)
		repo.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(fb domain.ExhibitionFeedback) bool {
			return fb.Rating == 4 && fb.StudentID == student.UserID
		})).Return(domain.ExhibitionFeedback{ID: 1, Rating: 4}, nil)

		got, err := s.SubmitFeedback(context.Background(), student, 10, 4, "great robotics corner")

		require.NoError(t, err)
		assert.Equal(t, 4, got.Rating)
		repo.AssertExpectations(t)
	})

	t.Run("rating out of range", func(t *testing.T) {
		s, _, _, _, _ := newStudentTest()

		_, err := s.SubmitFeedback(context.Background(), student, 10, 6, "")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("no-show cannot rate", func(t *testing.T) {
		s, repo, exRepo, _, _ := newStudentTest()
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(exhibitionIn(domain.ExhibitionCompleted), nil)
		repo.On("FindLive", mock.Anything, uint(10), student.UserID).
			Return(domain.StudentRegistration{ID: 1, Status: domain.RegistrationNoShow}, nil)

		_, err := s.SubmitFeedback(context.Background(), student, 10, 3, "")

		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
