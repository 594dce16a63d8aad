package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not found", err: dao.ErrExhibitionNotFound, want: domain.ErrNotFound},
		{name: "wrapped not found", err: fmt.Errorf("participation 3 -> %w", dao.ErrParticipationNotFound), want: domain.ErrNotFound},
		{name: "status changed", err: dao.ErrStatusChanged, want: domain.ErrInvalidState},
		{name: "exhibition went live", err: &dao.ExhibitionStatusError{Current: "ACTIVE"}, want: domain.ErrLockedPhase},
		{name: "exhibition completed", err: &dao.ExhibitionStatusError{Current: "COMPLETED"}, want: domain.ErrLockedPhase},
		{name: "exhibition moved elsewhere", err: &dao.ExhibitionStatusError{Current: "CONFIRMED"}, want: domain.ErrInvalidState},
		{name: "duplicate invitation", err: dao.ErrDuplicateParticipation, want: domain.ErrDuplicateInvitation},
		{name: "venue booked", err: dao.ErrVenueBooked, want: domain.ErrVenueOverlap},
		{name: "feedback exists", err: dao.ErrFeedbackExists, want: domain.ErrAlreadyExists},
		{name: "capacity", err: &dao.CapacityError{Requested: 5, Remaining: 4}, want: domain.ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.err.Error(), got.Error())
		})
	}

	t.Run("capacity keeps remaining", func(t *testing.T) {
		err := fmt.Errorf("r.dao.Apply -> %w", mapErr(&dao.CapacityError{Requested: 5, Remaining: 4, Cap: 6}))

		var capErr *domain.CapacityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, 4, capErr.Remaining)
	})

	t.Run("other errors untouched", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, mapErr(boom))
		assert.NoError(t, mapErr(nil))
	})
}
