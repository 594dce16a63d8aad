package request

import (
	"encoding/json"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

var (
	errEndBeforeStart = errors.New("end_date must not be before start_date")
	errMissingVerdict = errors.New("approve must be set")
)

type CreateExhibitionRequest struct {
	OrganizationID         uint    `json:"organization_id"`
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	Theme                  string  `json:"theme"`
	StartDate              string  `json:"start_date" example:"2026-04-01"`
	EndDate                string  `json:"end_date" example:"2026-04-02"`
	StartTime              string  `json:"start_time" example:"09:00"`
	EndTime                string  `json:"end_time" example:"17:00"`
	TotalAvailableBooths   int     `json:"total_available_booths"`
	StandardBoothSqm       float64 `json:"standard_booth_sqm"`
	MaxBoothsPerUniversity int     `json:"max_booths_per_university"`
	MaxBoothsPerProvider   int     `json:"max_booths_per_provider"`
	ExpectedVisitors       int     `json:"expected_visitors"`
}

func (req *CreateExhibitionRequest) Validate() error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.StartDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&req.EndDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&req.StartTime, validation.Date("15:04")),
		validation.Field(&req.EndTime, validation.Date("15:04")),
		validation.Field(&req.TotalAvailableBooths, validation.Min(0)),
		validation.Field(&req.StandardBoothSqm, validation.Min(0.0)),
		validation.Field(&req.MaxBoothsPerUniversity, validation.Min(0)),
		validation.Field(&req.MaxBoothsPerProvider, validation.Min(0)),
		validation.Field(&req.ExpectedVisitors, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	start, end := req.dates()
	if end.Before(start) {
		return errEndBeforeStart
	}

	return nil
}

// Exhibition must only be called after Validate succeeded.
func (req *CreateExhibitionRequest) Exhibition() domain.Exhibition {
	start, end := req.dates()

	return domain.Exhibition{
		OrganizationID:         req.OrganizationID,
		Title:                  req.Title,
		Description:            req.Description,
		Theme:                  req.Theme,
		StartDate:              start,
		EndDate:                end,
		StartTime:              req.StartTime,
		EndTime:                req.EndTime,
		TotalAvailableBooths:   req.TotalAvailableBooths,
		StandardBoothSqm:       req.StandardBoothSqm,
		MaxBoothsPerUniversity: req.MaxBoothsPerUniversity,
		MaxBoothsPerProvider:   req.MaxBoothsPerProvider,
		ExpectedVisitors:       req.ExpectedVisitors,
	}
}

func (req *CreateExhibitionRequest) dates() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)

	return start, end
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (req *CancelRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Reason, validation.Required, validation.Length(3, 1000)),
	)
}

type VenueRequestRequest struct {
	VenueID          uint       `json:"venue_id"`
	Notes            string     `json:"notes"`
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`
}

func (req *VenueRequestRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.Notes, validation.Length(0, 2000)),
	)
}

// ReviewRequest is the verdict on a venue request or a participation.
type ReviewRequest struct {
	Approve  *bool  `json:"approve"`
	Response string `json:"response"`
}

func (req *ReviewRequest) Validate() error {
	if req.Approve == nil {
		return errMissingVerdict
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Response, validation.Length(0, 2000)),
	)
}

type ReassignBoothsRequest struct {
	Allocations []domain.BoothAllocation `json:"allocations"`
	Schedule    json.RawMessage          `json:"schedule,omitempty" swaggertype:"object"`
}

func (req *ReassignBoothsRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Allocations, validation.Required),
	)
}

type SettleRequest struct {
	FinalizationDeadline *time.Time `json:"finalization_deadline,omitempty"`
}

// RecommendedFeeQuery is bound from the query string; margin is a fraction, 0.2 for 20%.
// A zero expected_universities counts the universities already taking part.
type RecommendedFeeQuery struct {
	ExpectedUniversities int    `form:"expected_universities"`
	Margin               string `form:"margin"`
}

func (q *RecommendedFeeQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.ExpectedUniversities, validation.Min(0)),
	)
}

func (q *RecommendedFeeQuery) Decimal() (decimal.Decimal, error) {
	if q.Margin == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(q.Margin)
}
