package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidState            = errors.New("invalid state")
	ErrDeadlinePassed          = errors.New("deadline passed")
	ErrCapacityExceeded        = errors.New("capacity exceeded")
	ErrIncompleteSettlement    = errors.New("incomplete settlement")
	ErrLockedPhase             = errors.New("exhibition is locked")
	ErrNoConfirmedParticipants = errors.New("no confirmed participants")
	ErrVenueOverlap            = errors.New("venue already booked for overlapping dates")
	ErrDuplicateInvitation     = errors.New("participant already invited")
	ErrAlreadyExists           = errors.New("already exists")
	ErrValidation              = errors.New("validation failed")
)

// StateError reports an operation attempted outside its required status.
type StateError struct {
	Entity  string
	Current string
	Want    []string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is %s, must be %s", e.Entity, e.Current, strings.Join(e.Want, " or "))
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// CapacityError carries how many booths were still free when a reservation failed.
type CapacityError struct {
	Requested int
	Remaining int
	Cap       int
}

func (e *CapacityError) Error() string {
	if e.Cap > 0 && e.Requested > e.Cap {
		return fmt.Sprintf("requested %d booths, per-participant cap is %d", e.Requested, e.Cap)
	}

	return fmt.Sprintf("requested %d booths, only %d remain", e.Requested, e.Remaining)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// SettlementError lists the participations that are not in their ready state.
type SettlementError struct {
	Blocking []uint
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("%d participations are not ready: %v", len(e.Blocking), e.Blocking)
}

func (e *SettlementError) Unwrap() error {
	return ErrIncompleteSettlement
}

// Invalid wraps a request-level rule violation so it maps to ErrValidation.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func stateNames[S ~string](states []S) []string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}

	return names
}
