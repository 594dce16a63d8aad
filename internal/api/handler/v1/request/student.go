package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errMissingAttended = errors.New("attended must be set")

type AttendanceRequest struct {
	RegistrationIDs []uint `json:"registration_ids"`
	Attended        *bool  `json:"attended"`
}

func (req *AttendanceRequest) Validate() error {
	if req.Attended == nil {
		return errMissingAttended
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.RegistrationIDs, validation.Required),
	)
}

type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

func (req *FeedbackRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&req.Comments, validation.Length(0, 4000)),
	)
}
