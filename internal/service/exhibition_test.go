package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

func newExhibitionTest() (*ExhibitionService, *MockExhibitionRepo, *MockDirectoryRepo, *MockOwnerRepo) {
	exRepo := new(MockExhibitionRepo)
	dir := new(MockDirectoryRepo)
	owners := new(MockOwnerRepo)

	s := NewExhibitionService(exRepo, dir, owners, testSettings())
	s.now = fixedClock

	return s, exRepo, dir, owners
}

func TestExhibitionService_Create(t *testing.T) {
	s, exRepo, dir, _ := newExhibitionTest()
	dir.On("FindOrganization", mock.Anything, uint(20)).Return(domain.Organization{ID: 20, OwnerID: orgOwner.UserID}, nil)
	exRepo.On("Create", mock.Anything, mock.MatchedBy(func(ex domain.Exhibition) bool {
		return ex.Status == domain.ExhibitionDraft && ex.StandardBoothSqm == 9 && ex.BoothsReserved == 0
	})).Return(domain.Exhibition{ID: 10, Status: domain.ExhibitionDraft}, nil)

	got, err := s.Create(context.Background(), orgOwner, domain.Exhibition{
		OrganizationID: 20,
		Title:          "Spring Careers",
		Status:         domain.ExhibitionActive,
		BoothsReserved: 4,
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ExhibitionDraft, got.Status)
	exRepo.AssertExpectations(t)
	dir.AssertExpectations(t)
}

func TestExhibitionService_Start(t *testing.T) {
	tests := []struct {
		name           string
		status         domain.ExhibitionStatus
		lockedStatus   domain.ExhibitionStatus
		participations []domain.Participation
		wantErr        error
	}{
		{
			name:   "confirmed school is enough",
			status: domain.ExhibitionConfirmed,
			participations: []domain.Participation{
				{ID: 1, Kind: domain.KindProvider, Status: domain.ParticipationConfirmed},
				{ID: 2, Kind: domain.KindSchool, Status: domain.ParticipationFinalized},
			},
		},
		{
			name:   "vendors alone do not count",
			status: domain.ExhibitionConfirmed,
			participations: []domain.Participation{
				{ID: 1, Kind: domain.KindProvider, Status: domain.ParticipationConfirmed},
				{ID: 2, Kind: domain.KindUniversity, Status: domain.ParticipationCancelled},
			},
			wantErr: ErrNoConfirmedParticipants,
		},
		{
			name:         "cancelled before the lock was taken",
			status:       domain.ExhibitionConfirmed,
			lockedStatus: domain.ExhibitionCancelledByMunicipality,
			participations: []domain.Participation{
				{ID: 2, Kind: domain.KindSchool, Status: domain.ParticipationFinalized},
			},
			wantErr: ErrInvalidState,
		},
		{
			name:    "not settled yet",
			status:  domain.ExhibitionPlanning,
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, exRepo, _, owners := newExhibitionTest()
			ex := planningExhibition()
			ex.Status = tt.status

			owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
			exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
			if tt.participations != nil {
				locked := ex
				if tt.lockedStatus != "" {
					locked.Status = tt.lockedStatus
				}
				exRepo.On("LockedState", mock.Anything, ex.ID).
					Return(domain.ExhibitionState{Exhibition: locked, Participations: tt.participations}, nil)
			}
			if tt.wantErr == nil {
				exRepo.On("Apply", mock.Anything, mock.MatchedBy(func(ch domain.ExhibitionChange) bool {
					return ch.Exhibition.Status == domain.ExhibitionActive && len(ch.Participations) == 0
				})).Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionActive}, nil)
			}

			got, err := s.Start(context.Background(), orgOwner, ex.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				exRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.ExhibitionActive, got.Status)
			}
			exRepo.AssertExpectations(t)
		})
	}
}

func TestExhibitionService_Complete(t *testing.T) {
	s, exRepo, _, owners := newExhibitionTest()
	ex := planningExhibition()
	ex.Status = domain.ExhibitionActive

	owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
	exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
	exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{Exhibition: ex}, nil)
	exRepo.On("Apply", mock.Anything, mock.MatchedBy(func(ch domain.ExhibitionChange) bool {
		return ch.Exhibition.Status == domain.ExhibitionCompleted
	})).Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionCompleted}, nil)

	got, err := s.Complete(context.Background(), orgOwner, ex.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ExhibitionCompleted, got.Status)
	exRepo.AssertExpectations(t)
}

func TestExhibitionService_Cancel(t *testing.T) {
	municipalChain := authz.OwnerChain{OrganizationOwnerID: orgOwner.UserID, MunicipalityAdminID: municipalAdm.UserID}

	t.Run("municipality cancels and participations follow", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()

		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{
			Exhibition: ex,
			Participations: []domain.Participation{
				{ID: 1, Kind: domain.KindUniversity, Status: domain.ParticipationConfirmed, PaymentStatus: domain.PaymentPaid, Fee: decimal.NewFromInt(100)},
				{ID: 2, Kind: domain.KindProvider, Status: domain.ParticipationRejected},
				{ID: 3, Kind: domain.KindSchool, Status: domain.ParticipationCancelled},
			},
		}, nil)

		var applied domain.ExhibitionChange
		exRepo.On("Apply", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { applied = args.Get(1).(domain.ExhibitionChange) }).
			Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionCancelledByMunicipality}, nil)

		_, err := s.Cancel(context.Background(), municipalAdm, ex.ID, "venue flooded")

		require.NoError(t, err)
		assert.Equal(t, domain.ExhibitionCancelledByMunicipality, applied.Exhibition.Status)
		assert.Equal(t, "venue flooded", applied.Exhibition.CancelReason)
		require.Len(t, applied.Participations, 2)
		assert.Equal(t, domain.PaymentRefundable, applied.Participations[0].Participation.PaymentStatus)
		assert.True(t, applied.Participations[0].Release)
		assert.Equal(t, domain.ParticipationRejected, applied.Participations[1].From)
	})

	t.Run("invitation committed before the lock is cancelled too", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()
		late := invitedUniversity()

		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		exRepo.On("LockedState", mock.Anything, ex.ID).
			Return(domain.ExhibitionState{Exhibition: ex, Participations: []domain.Participation{late}}, nil)
		exRepo.On("Apply", mock.Anything, mock.MatchedBy(func(ch domain.ExhibitionChange) bool {
			return len(ch.Participations) == 1 &&
				ch.Participations[0].Participation.ID == late.ID &&
				ch.Participations[0].From == domain.ParticipationInvited &&
				ch.Participations[0].Participation.Status == domain.ParticipationCancelled
		})).Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionCancelledByOrg}, nil)

		_, err := s.Cancel(context.Background(), orgOwner, ex.ID, "sponsor left")

		require.NoError(t, err)
		exRepo.AssertExpectations(t)
	})

	t.Run("organization cancels", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionDraft

		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{Exhibition: ex}, nil)
		exRepo.On("Apply", mock.Anything, mock.MatchedBy(func(ch domain.ExhibitionChange) bool {
			return ch.Exhibition.Status == domain.ExhibitionCancelledByOrg && ch.Exhibition.CancelReason == "sponsor left"
		})).Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionCancelledByOrg}, nil)

		got, err := s.Cancel(context.Background(), orgOwner, ex.ID, "sponsor left")

		require.NoError(t, err)
		assert.Equal(t, domain.ExhibitionCancelledByOrg, got.Status)
		exRepo.AssertExpectations(t)
	})

	t.Run("reason is required", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(planningExhibition(), nil)

		_, err := s.Cancel(context.Background(), orgOwner, 10, "")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("running exhibition is locked", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionActive
		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)

		_, err := s.Cancel(context.Background(), orgOwner, ex.ID, "too late")

		assert.ErrorIs(t, err, ErrLockedPhase)
	})

	t.Run("went live before the lock was taken", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionConfirmed
		live := ex
		live.Status = domain.ExhibitionActive
		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{Exhibition: live}, nil)

		_, err := s.Cancel(context.Background(), orgOwner, ex.ID, "too late")

		assert.ErrorIs(t, err, ErrLockedPhase)
		exRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("already cancelled", func(t *testing.T) {
		s, exRepo, _, owners := newExhibitionTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionCancelledByOrg
		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(municipalChain, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)

		_, err := s.Cancel(context.Background(), orgOwner, ex.ID, "twice")

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("participants cannot cancel the exhibition", func(t *testing.T) {
		s, _, _, owners := newExhibitionTest()
		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(municipalChain, nil)

		_, err := s.Cancel(context.Background(), universityAdm, 10, "no")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestDashboardService_Overview(t *testing.T) {
	t.Run("organization totals", func(t *testing.T) {
		exRepo := new(MockExhibitionRepo)
		dir := new(MockDirectoryRepo)
		s := NewDashboardService(exRepo, dir)

		dir.On("FindOrganization", mock.Anything, uint(20)).Return(domain.Organization{ID: 20, OwnerID: orgOwner.UserID}, nil)
		exRepo.On("CountByStatus", mock.Anything, uint(20)).Return(map[string]int64{
			"DRAFT":                     2,
			"ACTIVE":                    1,
			"COMPLETED":                 3,
			"CANCELLED_BY_ORG":          1,
			"CANCELLED_BY_MUNICIPALITY": 1,
		}, nil)
		exRepo.On("ListFinancials", mock.Anything, uint(20)).Return([]domain.ExhibitionFinancial{
			{TotalRevenue: decimal.NewFromInt(1000), TotalExpenses: decimal.NewFromInt(300), NetProfit: decimal.NewFromInt(700)},
			{TotalRevenue: decimal.NewFromInt(500), TotalExpenses: decimal.NewFromInt(600), NetProfit: decimal.NewFromInt(-100)},
		}, nil)

		got, err := s.Overview(context.Background(), orgOwner, 20)

		require.NoError(t, err)
		assert.Equal(t, int64(8), got.TotalExhibitions)
		assert.Equal(t, int64(1), got.ActiveExhibitions)
		assert.Equal(t, int64(3), got.CompletedExhibitions)
		assert.Equal(t, int64(2), got.CancelledExhibitions)
		assert.Equal(t, int64(0), got.StatusBreakdown["PLANNING"])
		assert.True(t, got.NetProfit.Equal(decimal.NewFromInt(600)))
		exRepo.AssertExpectations(t)
	})

	t.Run("platform overview is for developers", func(t *testing.T) {
		s := NewDashboardService(new(MockExhibitionRepo), new(MockDirectoryRepo))

		_, err := s.Overview(context.Background(), orgOwner, 0)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
