package v1

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context, actor domain.Actor, organizationID uint) (domain.Overview, error) {
	args := m.Called(ctx, actor, organizationID)
	return args.Get(0).(domain.Overview), args.Error(1)
}

func TestDashboardHandler_HandleOverview(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(svc *MockDashboardService)
		wantStatus int
	}{
		{
			name:   "scoped to an organization",
			target: "/dashboard/overview?organization_id=3",
			setup: func(svc *MockDashboardService) {
				svc.On("Overview", mock.Anything, orgOwner, uint(3)).Return(domain.Overview{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "all organizations needs a developer",
			target: "/dashboard/overview",
			setup: func(svc *MockDashboardService) {
				svc.On("Overview", mock.Anything, orgOwner, uint(0)).Return(domain.Overview{}, domain.ErrUnauthorized)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "bad organization id",
			target:     "/dashboard/overview?organization_id=abc",
			setup:      func(svc *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setup(svc)
			r := newRouter(&orgOwner, http.MethodGet, "/dashboard/overview", NewDashboardHandler(svc).HandleOverview)

			rec := do(t, r, http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
