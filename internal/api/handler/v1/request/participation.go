package request

import (
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

type InviteRequest struct {
	Kind             domain.Kind     `json:"kind" enums:"UNIVERSITY,SCHOOL,PROVIDER"`
	InstitutionID    uint            `json:"institution_id"`
	Fee              decimal.Decimal `json:"fee" swaggertype:"string"`
	OrgRequirements  string          `json:"org_requirements"`
	ResponseDeadline *time.Time      `json:"response_deadline,omitempty"`
}

func (req *InviteRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&req.InstitutionID, validation.Required),
		validation.Field(&req.Fee, validation.By(nonNegative)),
		validation.Field(&req.OrgRequirements, validation.Length(0, 4000)),
	)
}

type RegisterParticipationRequest struct {
	RequestedBooths  int             `json:"requested_booths"`
	BoothDetails     json.RawMessage `json:"booth_details,omitempty" swaggertype:"object"`
	ExpectedVisitors int             `json:"expected_visitors"`
}

func (req *RegisterParticipationRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.RequestedBooths, validation.Min(0)),
		validation.Field(&req.ExpectedVisitors, validation.Min(0)),
	)
}

type ProposeRequest struct {
	Proposal         string          `json:"proposal"`
	Cost             decimal.Decimal `json:"cost" swaggertype:"string"`
	ActivityIDs      []uint          `json:"activity_ids"`
	ExpectedVisitors int             `json:"expected_visitors"`
}

func (req *ProposeRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Proposal, validation.Required, validation.Length(1, 8000)),
		validation.Field(&req.Cost, validation.By(nonNegative)),
		validation.Field(&req.ActivityIDs, validation.Required),
		validation.Field(&req.ExpectedVisitors, validation.Min(0)),
	)
}

// ListParticipationsQuery filters by participant kind; empty means all kinds.
type ListParticipationsQuery struct {
	Kind domain.Kind `form:"kind"`
}

func (q *ListParticipationsQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Kind, validation.In(kinds...)),
	)
}

// WithdrawRequest is the optional body of a participation cancel.
type WithdrawRequest struct {
	Reason string `json:"reason"`
}

func (req *WithdrawRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Reason, validation.Length(0, 1000)),
	)
}
