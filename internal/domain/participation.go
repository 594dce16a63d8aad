package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindUniversity Kind = "UNIVERSITY"
	KindSchool     Kind = "SCHOOL"
	KindProvider   Kind = "PROVIDER"
)

type ParticipationStatus string

const (
	ParticipationInvited    ParticipationStatus = "INVITED"
	ParticipationRegistered ParticipationStatus = "REGISTERED"
	ParticipationProposed   ParticipationStatus = "PROPOSED"
	ParticipationAccepted   ParticipationStatus = "ACCEPTED"
	ParticipationApproved   ParticipationStatus = "APPROVED"
	ParticipationRejected   ParticipationStatus = "REJECTED"
	ParticipationConfirmed  ParticipationStatus = "CONFIRMED"
	ParticipationFinalized  ParticipationStatus = "FINALIZED"
	ParticipationAttended   ParticipationStatus = "ATTENDED"
	ParticipationCancelled  ParticipationStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "UNPAID"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentRefundable PaymentStatus = "REFUNDABLE"
)

type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionConfirm  Action = "confirm"
	ActionFinalize Action = "finalize"
	ActionAttend   Action = "attend"
	ActionCancel   Action = "cancel"
)

// KindCapabilities parameterizes the participation state machine for one kind of participant.
type KindCapabilities struct {
	Kind      Kind
	AdminRole Role
	// Pays participants are confirmed by the organizer recording their payment.
	Pays bool
	// Proposes participants submit a costed proposal with activities instead of a booth count.
	Proposes  bool
	HasBooths bool
	BoothType BoothType

	Submitted ParticipationStatus
	Approved  ParticipationStatus
	Rejected  ParticipationStatus

	transitions map[Action][]ParticipationStatus
}

var capabilities = map[Kind]KindCapabilities{
	KindUniversity: newCapabilities(KindCapabilities{
		Kind:      KindUniversity,
		AdminRole: RoleUniversityAdmin,
		Pays:      true,
		HasBooths: true,
		BoothType: BoothUniversity,
		Submitted: ParticipationRegistered,
		Approved:  ParticipationAccepted,
		Rejected:  ParticipationCancelled,
	}),
	KindSchool: newCapabilities(KindCapabilities{
		Kind:      KindSchool,
		AdminRole: RoleSchoolAdmin,
		Submitted: ParticipationRegistered,
		Approved:  ParticipationAccepted,
		Rejected:  ParticipationCancelled,
	}),
	KindProvider: newCapabilities(KindCapabilities{
		Kind:      KindProvider,
		AdminRole: RoleProviderAdmin,
		Proposes:  true,
		HasBooths: true,
		BoothType: BoothActivityProvider,
		Submitted: ParticipationProposed,
		Approved:  ParticipationApproved,
		Rejected:  ParticipationRejected,
	}),
}

func newCapabilities(c KindCapabilities) KindCapabilities {
	submitFrom := []ParticipationStatus{ParticipationInvited}
	if c.Proposes {
		submitFrom = append(submitFrom, ParticipationRejected)
	}

	c.transitions = map[Action][]ParticipationStatus{
		ActionSubmit:   submitFrom,
		ActionApprove:  {c.Submitted},
		ActionReject:   {c.Submitted},
		ActionConfirm:  {c.Approved},
		ActionFinalize: {ParticipationConfirmed},
		ActionAttend:   {ParticipationConfirmed, ParticipationFinalized},
	}

	return c
}

func (k Kind) Valid() bool {
	_, ok := capabilities[k]
	return ok
}

func (k Kind) Capabilities() KindCapabilities {
	return capabilities[k]
}

func (k Kind) IsInstitution() bool {
	return k == KindUniversity || k == KindSchool
}

func (s ParticipationStatus) IsTerminal() bool {
	return s == ParticipationCancelled || s == ParticipationAttended
}

// Next returns the status reached by applying a to a participation currently in from.
func (c KindCapabilities) Next(from ParticipationStatus, a Action) (ParticipationStatus, error) {
	if a == ActionCancel {
		if from.IsTerminal() {
			return "", &StateError{Entity: "participation", Current: string(from), Want: []string{"a non-terminal status"}}
		}

		return ParticipationCancelled, nil
	}

	allowed, ok := c.transitions[a]
	if !ok {
		return "", &StateError{Entity: "participation", Current: string(from), Want: []string{"a status accepting " + string(a)}}
	}

	for _, s := range allowed {
		if s == from {
			return c.target(a), nil
		}
	}

	return "", &StateError{Entity: "participation", Current: string(from), Want: stateNames(allowed)}
}

func (c KindCapabilities) target(a Action) ParticipationStatus {
	switch a {
	case ActionSubmit:
		return c.Submitted
	case ActionApprove:
		return c.Approved
	case ActionReject:
		return c.Rejected
	case ActionConfirm:
		return ParticipationConfirmed
	case ActionFinalize:
		return ParticipationFinalized
	case ActionAttend:
		return ParticipationAttended
	default:
		return ParticipationCancelled
	}
}

type Participation struct {
	ID                   uint                `json:"id"`
	ExhibitionID         uint                `json:"exhibition_id"`
	InstitutionID        uint                `json:"institution_id"`
	Kind                 Kind                `json:"kind"`
	Status               ParticipationStatus `json:"status"`
	Fee                  decimal.Decimal     `json:"fee" swaggertype:"string"`
	PaymentStatus        PaymentStatus       `json:"payment_status,omitempty"`
	PaymentDate          *time.Time          `json:"payment_date,omitempty"`
	RequestedBooths      int                 `json:"requested_booths"`
	ReservedBooths       int                 `json:"reserved_booths"`
	ApprovedBoothsCount  int                 `json:"approved_booths_count"`
	BoothDetails         json.RawMessage     `json:"booth_details,omitempty" swaggertype:"object"`
	OrgRequirements      string              `json:"org_requirements,omitempty"`
	Proposal             string              `json:"proposal,omitempty"`
	ProposedCost         decimal.Decimal     `json:"proposed_cost" swaggertype:"string"`
	ActivityIDs          []uint              `json:"activity_ids,omitempty"`
	OrgResponse          string              `json:"org_response,omitempty"`
	ExpectedVisitors     int                 `json:"expected_visitors"`
	ResponseDeadline     *time.Time          `json:"response_deadline,omitempty"`
	ConfirmationDeadline *time.Time          `json:"confirmation_deadline,omitempty"`
	InvitedAt            time.Time           `json:"invited_at"`
	SubmittedAt          *time.Time          `json:"submitted_at,omitempty"`
	ReviewedAt           *time.Time          `json:"reviewed_at,omitempty"`
	ConfirmedAt          *time.Time          `json:"confirmed_at,omitempty"`
	FinalizedAt          *time.Time          `json:"finalized_at,omitempty"`
	AttendedAt           *time.Time          `json:"attended_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason         string              `json:"cancel_reason,omitempty"`
}

func (p Participation) Capabilities() KindCapabilities {
	return p.Kind.Capabilities()
}

// Advance applies action a and returns the resulting participation, leaving p untouched.
func (p Participation) Advance(a Action, now time.Time) (Participation, error) {
	next, err := p.Capabilities().Next(p.Status, a)
	if err != nil {
		return Participation{}, err
	}

	p.Status = next
	switch a {
	case ActionSubmit:
		p.SubmittedAt = &now
	case ActionApprove, ActionReject:
		p.ReviewedAt = &now
	case ActionConfirm:
		p.ConfirmedAt = &now
	case ActionFinalize:
		p.FinalizedAt = &now
	case ActionAttend:
		p.AttendedAt = &now
	case ActionCancel:
		p.CancelledAt = &now
	}

	return p, nil
}

// DeadlineLapsed reports whether the deadline guarding p's current status has passed.
func (p Participation) DeadlineLapsed(ex Exhibition, now time.Time) bool {
	switch p.Status {
	case ParticipationInvited, ParticipationRegistered, ParticipationProposed, ParticipationRejected:
		return p.ResponseDeadline != nil && now.After(*p.ResponseDeadline)
	case ParticipationAccepted, ParticipationApproved:
		return p.ConfirmationDeadline != nil && now.After(*p.ConfirmationDeadline)
	case ParticipationConfirmed:
		return ex.Status == ExhibitionConfirmed && ex.FinalizationDeadline != nil && now.After(*ex.FinalizationDeadline)
	default:
		return false
	}
}

// Cancellation builds the one change every cancel path persists: status CANCELLED, booths and
// reservations released, and a paid fee turned refundable.
func (p Participation) Cancellation(reason string, now time.Time) (ParticipationChange, error) {
	from := p.Status
	next, err := p.Advance(ActionCancel, now)
	if err != nil {
		return ParticipationChange{}, err
	}

	if next.PaymentStatus == PaymentPaid {
		next.PaymentStatus = PaymentRefundable
	}
	next.CancelReason = reason

	return ParticipationChange{Participation: next, From: from, Release: true}, nil
}

// IsLive reports whether p still takes part in the exhibition.
func (p Participation) IsLive() bool {
	return p.Status != ParticipationCancelled && p.Status != ParticipationRejected
}

// ReadyForSettlement reports whether p is in its kind's terminal ready state.
func (p Participation) ReadyForSettlement() bool {
	if p.Status != ParticipationConfirmed {
		return false
	}

	if p.Capabilities().Pays {
		return p.PaymentStatus == PaymentPaid
	}

	return true
}

// ParticipationChange is one state-machine step, persisted in a single transaction together
// with its capacity reservation and booth writes. The update only applies while the stored
// status still equals From.
type ParticipationChange struct {
	Participation Participation
	From          ParticipationStatus
	// Reserve booths against the exhibition before writing, bounded by KindCap when > 0.
	Reserve int
	KindCap int
	Booths  []Booth
	// Release drops all booths and reservations held by the participation.
	Release bool
	// AddVisitors is added to the exhibition's actual visitor count.
	AddVisitors       int
	ReplaceActivities bool
}
