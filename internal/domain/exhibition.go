package domain

import (
	"encoding/json"
	"time"
)

type ExhibitionStatus string

const (
	ExhibitionDraft                   ExhibitionStatus = "DRAFT"
	ExhibitionVenuePending            ExhibitionStatus = "VENUE_PENDING"
	ExhibitionVenueApproved           ExhibitionStatus = "VENUE_APPROVED"
	ExhibitionPlanning                ExhibitionStatus = "PLANNING"
	ExhibitionConfirmed               ExhibitionStatus = "CONFIRMED"
	ExhibitionActive                  ExhibitionStatus = "ACTIVE"
	ExhibitionCompleted               ExhibitionStatus = "COMPLETED"
	ExhibitionCancelledByOrg          ExhibitionStatus = "CANCELLED_BY_ORG"
	ExhibitionCancelledByMunicipality ExhibitionStatus = "CANCELLED_BY_MUNICIPALITY"
)

var ExhibitionStatuses = []ExhibitionStatus{
	ExhibitionDraft,
	ExhibitionVenuePending,
	ExhibitionVenueApproved,
	ExhibitionPlanning,
	ExhibitionConfirmed,
	ExhibitionActive,
	ExhibitionCompleted,
	ExhibitionCancelledByOrg,
	ExhibitionCancelledByMunicipality,
}

func (s ExhibitionStatus) IsCancelled() bool {
	return s == ExhibitionCancelledByOrg || s == ExhibitionCancelledByMunicipality
}

// IsLocked reports whether the exhibition has reached the live phase, after which
// participations and booths can no longer be changed.
func (s ExhibitionStatus) IsLocked() bool {
	return s == ExhibitionActive || s == ExhibitionCompleted
}

type Exhibition struct {
	ID                     uint             `json:"id"`
	OrganizationID         uint             `json:"organization_id"`
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	Theme                  string           `json:"theme"`
	Status                 ExhibitionStatus `json:"status"`
	StartDate              time.Time        `json:"start_date"`
	EndDate                time.Time        `json:"end_date"`
	StartTime              string           `json:"start_time"`
	EndTime                string           `json:"end_time"`
	TotalAvailableBooths   int              `json:"total_available_booths"`
	StandardBoothSqm       float64          `json:"standard_booth_sqm"`
	MaxBoothsPerUniversity int              `json:"max_booths_per_university"`
	MaxBoothsPerProvider   int              `json:"max_booths_per_provider"`
	BoothsReserved         int              `json:"booths_reserved"`
	ExpectedVisitors       int              `json:"expected_visitors"`
	ActualVisitors         int              `json:"actual_visitors"`
	VisitorCapacity        int              `json:"visitor_capacity"`
	ScheduleJSON           json.RawMessage  `json:"schedule_json,omitempty" swaggertype:"object"`
	FinalizationDeadline   *time.Time       `json:"finalization_deadline,omitempty"`
	CancelReason           string           `json:"cancel_reason,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

func (e Exhibition) RemainingBooths() int {
	return e.TotalAvailableBooths - e.BoothsReserved
}

// Days counts calendar days from start to end, both included.
func (e Exhibition) Days() int {
	if e.EndDate.Before(e.StartDate) {
		return 0
	}

	return int(day(e.EndDate).Sub(day(e.StartDate)).Hours()/24) + 1
}

// BoothCap returns the per-participant booth cap for kind, 0 meaning uncapped.
func (e Exhibition) BoothCap(kind Kind) int {
	switch kind {
	case KindUniversity:
		return e.MaxBoothsPerUniversity
	case KindProvider:
		return e.MaxBoothsPerProvider
	default:
		return 0
	}
}

// Require fails with ErrLockedPhase once the exhibition is live, and with a StateError
// when its status is not one of want.
func (e Exhibition) Require(want ...ExhibitionStatus) error {
	for _, s := range want {
		if e.Status == s {
			return nil
		}
	}

	if e.Status.IsLocked() {
		return ErrLockedPhase
	}

	return &StateError{Entity: "exhibition", Current: string(e.Status), Want: stateNames(want)}
}

// CheckReservation is the capacity ledger rule; it does not mutate the exhibition.
func (e Exhibition) CheckReservation(requested, kindCap int) error {
	if kindCap > 0 && requested > kindCap {
		return &CapacityError{Requested: requested, Remaining: e.RemainingBooths(), Cap: kindCap}
	}

	if requested > e.RemainingBooths() {
		return &CapacityError{Requested: requested, Remaining: e.RemainingBooths(), Cap: kindCap}
	}

	return nil
}

// ExhibitionChange is a lifecycle transition persisted atomically together with the
// participation changes and financial record it causes.
type ExhibitionChange struct {
	Exhibition     Exhibition
	Participations []ParticipationChange
	Financial      *ExhibitionFinancial
}

// ExhibitionState is an exhibition with its participations and booths, read under the
// exhibition row lock.
type ExhibitionState struct {
	Exhibition     Exhibition
	Participations []Participation
	Booths         []Booth
}

// ExhibitionPlan decides a lifecycle transition from the locked state. Returning an error
// abandons the transition.
type ExhibitionPlan func(state ExhibitionState) (ExhibitionChange, error)
