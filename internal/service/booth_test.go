package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

func TestBoothService_Reassign(t *testing.T) {
	allocations := []domain.BoothAllocation{
		{BoothID: 1, Zone: "A", BoothNumber: 1},
		{BoothID: 2, Zone: "A", BoothNumber: 2},
	}

	tests := []struct {
		name        string
		status      domain.ExhibitionStatus
		allocations []domain.BoothAllocation
		schedule    json.RawMessage
		repoCall    []domain.ExhibitionStatus
		wantErr     error
	}{
		{
			name:        "planning with floor plan",
			status:      domain.ExhibitionPlanning,
			allocations: allocations,
			schedule:    json.RawMessage(`{"halls":["A"]}`),
			repoCall:    []domain.ExhibitionStatus{domain.ExhibitionPlanning},
		},
		{
			name:        "confirmed without floor plan",
			status:      domain.ExhibitionConfirmed,
			allocations: allocations,
			repoCall:    []domain.ExhibitionStatus{domain.ExhibitionPlanning, domain.ExhibitionConfirmed},
		},
		{
			name:        "floor plan after settlement",
			status:      domain.ExhibitionConfirmed,
			allocations: allocations,
			schedule:    json.RawMessage(`{}`),
			wantErr:     ErrInvalidState,
		},
		{
			name:        "locked once running",
			status:      domain.ExhibitionActive,
			allocations: allocations,
			wantErr:     ErrLockedPhase,
		},
		{
			name:   "same slot twice",
			status: domain.ExhibitionPlanning,
			allocations: []domain.BoothAllocation{
				{BoothID: 1, Zone: "A", BoothNumber: 1},
				{BoothID: 2, Zone: "A", BoothNumber: 1},
			},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBoothRepo)
			exRepo := new(MockExhibitionRepo)
			owners := new(MockOwnerRepo)
			s := NewBoothService(repo, exRepo, owners)

			ex := planningExhibition()
			ex.Status = tt.status
			owners.On("ExhibitionOwners", mock.Anything, ex.ID).Return(chainFor(domain.Participation{}), nil)
			exRepo.On("FindByID", mock.Anything, ex.ID).Return(ex, nil)
			if tt.repoCall != nil {
				repo.On("Reassign", mock.Anything, ex.ID, tt.allocations, tt.schedule, tt.repoCall).Return(nil)
			}

			err := s.Reassign(context.Background(), orgOwner, ex.ID, tt.allocations, tt.schedule)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Reassign", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAllocateBooths(t *testing.T) {
	school := domain.Participation{ID: 1, ExhibitionID: 10, Kind: domain.KindSchool}
	assert.Empty(t, allocateBooths(school, 3, nil))

	university := domain.Participation{ID: 2, ExhibitionID: 10, Kind: domain.KindUniversity}
	booths := allocateBooths(university, 2, nil)
	require.Len(t, booths, 2)
	for _, b := range booths {
		assert.Equal(t, domain.UnassignedZone, b.Zone)
		assert.Equal(t, 0, b.BoothNumber)
		assert.Equal(t, uint(2), b.ParticipationID)
		assert.Nil(t, b.ActivityID)
	}
}
