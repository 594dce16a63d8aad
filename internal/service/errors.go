package service

import (
	"errors"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository"
)

var (
	ErrNotFound                = domain.ErrNotFound
	ErrUnauthorized            = domain.ErrUnauthorized
	ErrInvalidState            = domain.ErrInvalidState
	ErrDeadlinePassed          = domain.ErrDeadlinePassed
	ErrCapacityExceeded        = domain.ErrCapacityExceeded
	ErrIncompleteSettlement    = domain.ErrIncompleteSettlement
	ErrLockedPhase             = domain.ErrLockedPhase
	ErrNoConfirmedParticipants = domain.ErrNoConfirmedParticipants
	ErrVenueOverlap            = domain.ErrVenueOverlap
	ErrDuplicateInvitation     = domain.ErrDuplicateInvitation
	ErrAlreadyExists           = domain.ErrAlreadyExists
	ErrValidation              = domain.ErrValidation

	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrWrongPassword   = errors.New("wrong password")
)
