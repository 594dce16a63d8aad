package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/service"
)

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) registration(args mock.Arguments) (domain.StudentRegistration, error) {
	return args.Get(0).(domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentService) Register(ctx context.Context, actor domain.Actor, exhibitionID uint) (domain.StudentRegistration, error) {
	return m.registration(m.Called(ctx, actor, exhibitionID))
}

func (m *MockStudentService) Approve(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error) {
	return m.registration(m.Called(ctx, actor, registrationID))
}

func (m *MockStudentService) Cancel(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error) {
	return m.registration(m.Called(ctx, actor, registrationID))
}

func (m *MockStudentService) MarkAttendance(ctx context.Context, actor domain.Actor, exhibitionID uint, registrationIDs []uint, attended bool) (service.AttendanceResult, error) {
	args := m.Called(ctx, actor, exhibitionID, registrationIDs, attended)
	return args.Get(0).(service.AttendanceResult), args.Error(1)
}

func (m *MockStudentService) SubmitFeedback(ctx context.Context, actor domain.Actor, exhibitionID uint, rating int, comments string) (domain.ExhibitionFeedback, error) {
	args := m.Called(ctx, actor, exhibitionID, rating, comments)
	return args.Get(0).(domain.ExhibitionFeedback), args.Error(1)
}

func (m *MockStudentService) ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error) {
	args := m.Called(ctx, exhibitionID)
	return args.Get(0).([]domain.ExhibitionFeedback), args.Error(1)
}

func (m *MockStudentService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.StudentRegistration, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.StudentRegistration), args.Error(1)
}

func TestStudentHandler_HandleRegisterStudent(t *testing.T) {
	t.Run("full exhibition", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("Register", mock.Anything, student, uint(10)).
			Return(domain.StudentRegistration{}, &domain.CapacityError{Requested: 1, Remaining: 0})
		h := NewStudentHandler(svc)
		r := newRouter(&student, http.MethodPost, "/exhibitions/:exhibitionID/students", h.HandleRegisterStudent)

		rec := do(t, r, http.MethodPost, "/exhibitions/10/students", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("registered", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("Register", mock.Anything, student, uint(10)).
			Return(domain.StudentRegistration{ID: 1, Status: domain.RegistrationRegistered}, nil)
		h := NewStudentHandler(svc)
		r := newRouter(&student, http.MethodPost, "/exhibitions/:exhibitionID/students", h.HandleRegisterStudent)

		rec := do(t, r, http.MethodPost, "/exhibitions/10/students", nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestStudentHandler_HandleStudentAttendance(t *testing.T) {
	t.Run("skipped registrations are reported with the marked ones", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("MarkAttendance", mock.Anything, orgOwner, uint(10), []uint{1, 2}, true).
			Return(service.AttendanceResult{
				Marked:  []domain.StudentRegistration{{ID: 1, Status: domain.RegistrationAttended}},
				Skipped: []service.SkippedRegistration{{RegistrationID: 2, Reason: "student registration is REGISTERED"}},
			}, nil)
		h := NewStudentHandler(svc)
		r := newRouter(&orgOwner, http.MethodPost, "/exhibitions/:exhibitionID/attendance", h.HandleStudentAttendance)

		rec := do(t, r, http.MethodPost, "/exhibitions/10/attendance", map[string]any{"registration_ids": []uint{1, 2}, "attended": true})

		require.Equal(t, http.StatusOK, rec.Code)
		var got service.AttendanceResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Marked, 1)
		require.Len(t, got.Skipped, 1)
		assert.Equal(t, uint(2), got.Skipped[0].RegistrationID)
	})

	t.Run("exhibition not running", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("MarkAttendance", mock.Anything, orgOwner, uint(10), []uint{1}, false).
			Return(service.AttendanceResult{}, &domain.StateError{Entity: "exhibition", Current: "CONFIRMED", Want: []string{"ACTIVE"}})
		h := NewStudentHandler(svc)
		r := newRouter(&orgOwner, http.MethodPost, "/exhibitions/:exhibitionID/attendance", h.HandleStudentAttendance)

		rec := do(t, r, http.MethodPost, "/exhibitions/10/attendance", map[string]any{"registration_ids": []uint{1}, "attended": false})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("attended flag is required", func(t *testing.T) {
		svc := new(MockStudentService)
		h := NewStudentHandler(svc)
		r := newRouter(&orgOwner, http.MethodPost, "/exhibitions/:exhibitionID/attendance", h.HandleStudentAttendance)

		rec := do(t, r, http.MethodPost, "/exhibitions/10/attendance", map[string]any{"registration_ids": []uint{1}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStudentHandler_HandleSubmitFeedback(t *testing.T) {
	svc := new(MockStudentService)
	h := NewStudentHandler(svc)
	r := newRouter(&student, http.MethodPost, "/exhibitions/:exhibitionID/feedback", h.HandleSubmitFeedback)

	rec := do(t, r, http.MethodPost, "/exhibitions/10/feedback", map[string]any{"rating": 9})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "SubmitFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
