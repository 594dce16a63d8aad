package repository

import (
	"errors"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

var (
	ErrNotFound        = dao.ErrNotFound
	ErrStatusChanged   = dao.ErrStatusChanged
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

// classified keeps the storage error text while also matching a domain error.
type classified struct {
	err  error
	kind error
}

func (c *classified) Error() string {
	return c.err.Error()
}

func (c *classified) Unwrap() []error {
	return []error{c.err, c.kind}
}

// mapErr attaches the domain meaning of a storage error so services and handlers only ever test
// against domain errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var (
		capErr    *dao.CapacityError
		statusErr *dao.ExhibitionStatusError
	)
	switch {
	case errors.As(err, &capErr):
		return &classified{err: err, kind: &domain.CapacityError{
			Requested: capErr.Requested,
			Remaining: capErr.Remaining,
			Cap:       capErr.Cap,
		}}
	case errors.As(err, &statusErr) && domain.ExhibitionStatus(statusErr.Current).IsLocked():
		return &classified{err: err, kind: domain.ErrLockedPhase}
	case errors.Is(err, dao.ErrNotFound):
		return &classified{err: err, kind: domain.ErrNotFound}
	case errors.Is(err, dao.ErrStatusChanged), errors.Is(err, dao.ErrFinancialExists):
		return &classified{err: err, kind: domain.ErrInvalidState}
	case errors.Is(err, dao.ErrDuplicateParticipation):
		return &classified{err: err, kind: domain.ErrDuplicateInvitation}
	case errors.Is(err, dao.ErrVenueBooked):
		return &classified{err: err, kind: domain.ErrVenueOverlap}
	case errors.Is(err, dao.ErrUserEmailExists),
		errors.Is(err, dao.ErrRegistrationExists),
		errors.Is(err, dao.ErrFeedbackExists):
		return &classified{err: err, kind: domain.ErrAlreadyExists}
	default:
		return err
	}
}
