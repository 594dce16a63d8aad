package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

func newVenueTest() (*VenueService, *MockVenueRequestRepo, *MockExhibitionRepo, *MockDirectoryRepo, *MockOwnerRepo) {
	repo := new(MockVenueRequestRepo)
	exRepo := new(MockExhibitionRepo)
	dir := new(MockDirectoryRepo)
	owners := new(MockOwnerRepo)

	s := NewVenueService(repo, exRepo, dir, owners, testSettings())
	s.now = fixedClock

	return s, repo, exRepo, dir, owners
}

func pendingVenueRequest() (domain.VenueRequest, domain.Exhibition) {
	ex := planningExhibition()
	ex.Status = domain.ExhibitionVenuePending
	ex.TotalAvailableBooths = 0
	ex.StandardBoothSqm = 9

	vr := domain.VenueRequest{
		ID:               50,
		ExhibitionID:     ex.ID,
		VenueID:          60,
		Status:           domain.VenueRequestPending,
		ResponseDeadline: deadlineIn(24 * time.Hour),
		RequestedAt:      testNow.Add(-time.Hour),
	}

	return vr, ex
}

func TestVenueService_RequestVenue(t *testing.T) {
	t.Run("files a pending request", func(t *testing.T) {
		s, repo, exRepo, dir, owners := newVenueTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionDraft

		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		dir.On("FindVenue", mock.Anything, uint(60)).Return(domain.Venue{ID: 60, Active: true}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(vr domain.VenueRequest) bool {
			return vr.Status == domain.VenueRequestPending &&
				vr.ResponseDeadline.Equal(testNow.Add(7*24*time.Hour)) &&
				vr.OrgNotes == "two halls"
		})).Return(domain.VenueRequest{ID: 50, Status: domain.VenueRequestPending}, nil)

		_, err := s.RequestVenue(context.Background(), orgOwner, ex.ID, 60, "two halls", nil)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("only from draft", func(t *testing.T) {
		s, _, exRepo, _, owners := newVenueTest()
		owners.On("ExhibitionOwners", mock.Anything, uint(10)).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, uint(10)).Return(planningExhibition(), nil)

		_, err := s.RequestVenue(context.Background(), orgOwner, 10, 60, "", nil)

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("inactive venue", func(t *testing.T) {
		s, _, exRepo, dir, owners := newVenueTest()
		ex := planningExhibition()
		ex.Status = domain.ExhibitionDraft
		owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		dir.On("FindVenue", mock.Anything, uint(60)).Return(domain.Venue{ID: 60}, nil)

		_, err := s.RequestVenue(context.Background(), orgOwner, ex.ID, 60, "", nil)

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestVenueService_Review(t *testing.T) {
	chain := authz.OwnerChain{OrganizationOwnerID: orgOwner.UserID, MunicipalityAdminID: municipalAdm.UserID}

	t.Run("approval derives booths and visitor capacity", func(t *testing.T) {
		s, repo, exRepo, dir, owners := newVenueTest()
		vr, ex := pendingVenueRequest()

		owners.On("VenueRequestOwners", mock.Anything, vr.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, vr.ID).Return(vr, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		repo.On("ApprovedBookings", mock.Anything, vr.VenueID, ex.ID).Return([]domain.VenueBooking{{
			RequestID:    49,
			ExhibitionID: 11,
			StartDate:    time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
		}}, nil)
		dir.On("FindVenue", mock.Anything, vr.VenueID).Return(domain.Venue{ID: vr.VenueID, MaxCapacity: 800, SpaceSqm: 100, Active: true}, nil)
		repo.On("Review", mock.Anything,
			mock.MatchedBy(func(r domain.VenueRequest) bool {
				return r.Status == domain.VenueRequestApproved && *r.ReviewerID == municipalAdm.UserID
			}),
			mock.MatchedBy(func(e domain.Exhibition) bool {
				return e.Status == domain.ExhibitionVenueApproved && e.TotalAvailableBooths == 11 && e.VisitorCapacity == 800
			}),
		).Return(domain.VenueRequest{ID: vr.ID, Status: domain.VenueRequestApproved}, nil)

		got, err := s.Review(context.Background(), municipalAdm, vr.ID, true, "ok")

		require.NoError(t, err)
		assert.Equal(t, domain.VenueRequestApproved, got.Status)
		repo.AssertExpectations(t)
		dir.AssertExpectations(t)
	})

	t.Run("overlapping booking", func(t *testing.T) {
		s, repo, exRepo, _, owners := newVenueTest()
		vr, ex := pendingVenueRequest()

		owners.On("VenueRequestOwners", mock.Anything, vr.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, vr.ID).Return(vr, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		repo.On("ApprovedBookings", mock.Anything, vr.VenueID, ex.ID).Return([]domain.VenueBooking{{
			RequestID:    49,
			ExhibitionID: 11,
			StartDate:    time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		}}, nil)

		_, err := s.Review(context.Background(), municipalAdm, vr.ID, true, "")

		assert.ErrorIs(t, err, ErrVenueOverlap)
		repo.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lapsed request is rejected on access", func(t *testing.T) {
		s, repo, exRepo, _, owners := newVenueTest()
		vr, ex := pendingVenueRequest()
		vr.ResponseDeadline = deadlineIn(-time.Hour)

		owners.On("VenueRequestOwners", mock.Anything, vr.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, vr.ID).Return(vr, nil)
		exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
		repo.On("Review", mock.Anything,
			mock.MatchedBy(func(r domain.VenueRequest) bool { return r.Status == domain.VenueRequestRejected }),
			mock.MatchedBy(func(e domain.Exhibition) bool { return e.Status == domain.ExhibitionDraft }),
		).Return(domain.VenueRequest{ID: vr.ID, Status: domain.VenueRequestRejected}, nil).Once()

		_, err := s.Review(context.Background(), municipalAdm, vr.ID, true, "")

		assert.ErrorIs(t, err, ErrDeadlinePassed)
		repo.AssertExpectations(t)
	})

	t.Run("already reviewed", func(t *testing.T) {
		s, repo, _, _, owners := newVenueTest()
		vr, _ := pendingVenueRequest()
		vr.Status = domain.VenueRequestRejected

		owners.On("VenueRequestOwners", mock.Anything, vr.ID).Return(chain, nil)
		repo.On("FindByID", mock.Anything, vr.ID).Return(vr, nil)

		_, err := s.Review(context.Background(), municipalAdm, vr.ID, true, "")

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("organizer cannot review", func(t *testing.T) {
		s, _, _, _, owners := newVenueTest()
		owners.On("VenueRequestOwners", mock.Anything, uint(50)).Return(chain, nil)

		_, err := s.Review(context.Background(), orgOwner, 50, true, "")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
