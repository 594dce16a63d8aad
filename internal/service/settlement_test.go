package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

type settlementMocks struct {
	exRepo    *MockExhibitionRepo
	partRepo  *MockParticipationRepo
	venueRepo *MockVenueRequestRepo
	dir       *MockDirectoryRepo
	owners    *MockOwnerRepo
}

func newSettlementTest() (*SettlementService, settlementMocks) {
	m := settlementMocks{
		exRepo:    new(MockExhibitionRepo),
		partRepo:  new(MockParticipationRepo),
		venueRepo: new(MockVenueRequestRepo),
		dir:       new(MockDirectoryRepo),
		owners:    new(MockOwnerRepo),
	}

	s := NewSettlementService(m.exRepo, m.partRepo, m.venueRepo, m.dir, m.owners, testSettings())
	s.now = fixedClock

	return s, m
}

func (m settlementMocks) expectExhibition(ex domain.Exhibition) {
	m.owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
	m.exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
}

func settledParticipations() []domain.Participation {
	return []domain.Participation{
		{ID: 1, Kind: domain.KindUniversity, Status: domain.ParticipationConfirmed, PaymentStatus: domain.PaymentPaid, Fee: decimal.RequireFromString("1200.50")},
		{ID: 2, Kind: domain.KindUniversity, Status: domain.ParticipationConfirmed, PaymentStatus: domain.PaymentPaid, Fee: decimal.RequireFromString("800.25")},
		{ID: 3, Kind: domain.KindSchool, Status: domain.ParticipationConfirmed},
		{ID: 4, Kind: domain.KindProvider, Status: domain.ParticipationConfirmed, ProposedCost: decimal.RequireFromString("450.10")},
		{ID: 5, Kind: domain.KindUniversity, Status: domain.ParticipationCancelled, PaymentStatus: domain.PaymentRefundable, Fee: decimal.NewFromInt(999)},
		{ID: 6, Kind: domain.KindProvider, Status: domain.ParticipationRejected, ProposedCost: decimal.NewFromInt(999)},
	}
}

func TestSettlementService_Settle(t *testing.T) {
	t.Run("sums confirmed fees and costs exactly", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		ex.ScheduleJSON = json.RawMessage(`{"hall":"A"}`)

		m.expectExhibition(ex)
		m.exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{
			Exhibition:     ex,
			Participations: settledParticipations(),
			Booths:         []domain.Booth{{ID: 1, Zone: "A", BoothNumber: 1}},
		}, nil)

		var applied domain.ExhibitionChange
		m.exRepo.On("Apply", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { applied = args.Get(1).(domain.ExhibitionChange) }).
			Return(domain.Exhibition{ID: ex.ID, Status: domain.ExhibitionConfirmed}, nil)

		got, err := s.Settle(context.Background(), orgOwner, ex.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.ExhibitionConfirmed, got.Status)
		assert.Equal(t, domain.ExhibitionConfirmed, applied.Exhibition.Status)
		require.NotNil(t, applied.Financial)
		assert.True(t, applied.Financial.TotalRevenue.Equal(decimal.RequireFromString("2000.75")))
		assert.True(t, applied.Financial.TotalExpenses.Equal(decimal.RequireFromString("450.10")))
		assert.True(t, applied.Financial.NetProfit.Equal(decimal.RequireFromString("1550.65")))
		require.NotNil(t, applied.Exhibition.FinalizationDeadline)
		assert.True(t, applied.Exhibition.FinalizationDeadline.Equal(testNow.Add(3*24*time.Hour)))

		var snapshot map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(applied.Exhibition.ScheduleJSON, &snapshot))
		assert.JSONEq(t, `{"hall":"A"}`, string(snapshot["floor_plan"]))
		assert.Contains(t, snapshot, "booths")

		m.exRepo.AssertExpectations(t)
	})

	t.Run("unpaid university blocks settlement", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		participations := settledParticipations()
		participations[1].Status = domain.ParticipationAccepted
		participations[1].PaymentStatus = domain.PaymentUnpaid

		m.expectExhibition(ex)
		m.exRepo.On("LockedState", mock.Anything, ex.ID).
			Return(domain.ExhibitionState{Exhibition: ex, Participations: participations}, nil)

		_, err := s.Settle(context.Background(), orgOwner, ex.ID, nil)

		assert.ErrorIs(t, err, ErrIncompleteSettlement)
		var settleErr *domain.SettlementError
		require.True(t, errors.As(err, &settleErr))
		assert.Equal(t, []uint{2}, settleErr.Blocking)
		m.exRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("invitation committed before the lock blocks settlement", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		late := invitedUniversity()
		late.ID = 7

		m.expectExhibition(ex)
		m.exRepo.On("LockedState", mock.Anything, ex.ID).Return(domain.ExhibitionState{
			Exhibition:     ex,
			Participations: append(settledParticipations(), late),
		}, nil)

		_, err := s.Settle(context.Background(), orgOwner, ex.ID, nil)

		var settleErr *domain.SettlementError
		require.True(t, errors.As(err, &settleErr))
		assert.Equal(t, []uint{7}, settleErr.Blocking)
		m.exRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("settled by someone else before the lock", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		settled := ex
		settled.Status = domain.ExhibitionConfirmed

		m.expectExhibition(ex)
		m.exRepo.On("LockedState", mock.Anything, ex.ID).
			Return(domain.ExhibitionState{Exhibition: settled, Participations: settledParticipations()}, nil)

		_, err := s.Settle(context.Background(), orgOwner, ex.ID, nil)

		assert.ErrorIs(t, err, ErrInvalidState)
		m.exRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("already settled", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionConfirmed
		m.expectExhibition(ex)

		_, err := s.Settle(context.Background(), orgOwner, ex.ID, nil)

		assert.ErrorIs(t, err, ErrInvalidState)
		m.exRepo.AssertNotCalled(t, "LockedState", mock.Anything, mock.Anything)
	})

	t.Run("finalization deadline in the past", func(t *testing.T) {
		s, m := newSettlementTest()
		ex := planningExhibition()
		m.expectExhibition(ex)

		_, err := s.Settle(context.Background(), orgOwner, ex.ID, deadlineIn(-time.Hour))

		assert.ErrorIs(t, err, ErrValidation)
		m.exRepo.AssertNotCalled(t, "LockedState", mock.Anything, mock.Anything)
	})
}

func TestSettlementService_RecommendedFee(t *testing.T) {
	vendors := []domain.Participation{
		{Kind: domain.KindProvider, Status: domain.ParticipationApproved, ProposedCost: decimal.NewFromInt(1000)},
		{Kind: domain.KindProvider, Status: domain.ParticipationProposed, ProposedCost: decimal.NewFromInt(5000)},
		{Kind: domain.KindUniversity, Status: domain.ParticipationRegistered},
		{Kind: domain.KindUniversity, Status: domain.ParticipationAccepted},
		{Kind: domain.KindUniversity, Status: domain.ParticipationInvited},
		{Kind: domain.KindUniversity, Status: domain.ParticipationCancelled},
	}
	approved := []domain.VenueRequest{
		{ID: 1, ExhibitionID: 10, VenueID: 5, Status: domain.VenueRequestRejected},
		{ID: 2, ExhibitionID: 10, VenueID: 6, Status: domain.VenueRequestApproved},
	}

	tests := []struct {
		name           string
		participations []domain.Participation
		requests       []domain.VenueRequest
		expected       int
		margin         string
		wantVenue      string
		wantBreakEven  string
		want           string
		wantErr        error
	}{
		{
			// 1300 / 3 = 433.33 before the margin, so 476.66 rather than 476.67
			name:           "venue rental for both days and vendor costs",
			participations: vendors,
			requests:       approved,
			expected:       3,
			margin:         "0.1",
			wantVenue:      "300",
			wantBreakEven:  "433.33",
			want:           "476.66",
		},
		{
			name:           "live universities stand in for the expected count",
			participations: vendors,
			requests:       []domain.VenueRequest{{ID: 1, ExhibitionID: 10, VenueID: 6, Status: domain.VenueRequestPending}},
			margin:         "0.1",
			wantVenue:      "0",
			wantBreakEven:  "333.33",
			want:           "366.66",
		},
		{
			name: "no universities at all",
			participations: []domain.Participation{
				{Kind: domain.KindProvider, Status: domain.ParticipationConfirmed, ProposedCost: decimal.NewFromInt(200)},
			},
			margin:  "0.25",
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newSettlementTest()
			m.expectExhibition(planningExhibition())
			m.venueRepo.On("ListByExhibition", mock.Anything, uint(10)).Return(tt.requests, nil)
			m.dir.On("FindVenue", mock.Anything, uint(6)).
				Return(domain.Venue{ID: 6, RentalFeePerDay: decimal.NewFromInt(150)}, nil).Maybe()
			m.partRepo.On("ListByExhibition", mock.Anything, uint(10), domain.Kind("")).Return(tt.participations, nil)

			got, err := s.RecommendedFee(context.Background(), orgOwner, 10, tt.expected, decimal.RequireFromString(tt.margin))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.VenueCost.Equal(decimal.RequireFromString(tt.wantVenue)), "venue %s", got.VenueCost)
			assert.True(t, got.BreakEven.Equal(decimal.RequireFromString(tt.wantBreakEven)), "break even %s", got.BreakEven)
			assert.True(t, got.Fee.Equal(decimal.RequireFromString(tt.want)), "fee %s", got.Fee)
			m.venueRepo.AssertExpectations(t)
		})
	}

	t.Run("negative expected count", func(t *testing.T) {
		s, m := newSettlementTest()
		m.owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(chainFor(domain.Participation{}), nil)

		_, err := s.RecommendedFee(context.Background(), orgOwner, 10, -1, decimal.Zero)

		assert.ErrorIs(t, err, ErrValidation)
		m.exRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
