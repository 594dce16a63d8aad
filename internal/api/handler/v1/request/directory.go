package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req *CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
	)
}

type CreateMunicipalityRequest struct {
	Name string `json:"name"`
}

func (req *CreateMunicipalityRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
	)
}

type CreateVenueRequest struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	MaxCapacity     int             `json:"max_capacity"`
	SpaceSqm        float64         `json:"space_sqm"`
	RentalFeePerDay decimal.Decimal `json:"rental_fee_per_day" swaggertype:"string"`
}

func (req *CreateVenueRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Address, validation.Required),
		validation.Field(&req.MaxCapacity, validation.Min(0)),
		validation.Field(&req.SpaceSqm, validation.Required, validation.Min(0.0)),
		validation.Field(&req.RentalFeePerDay, validation.By(nonNegative)),
	)
}

func (req *CreateVenueRequest) Venue(municipalityID uint) domain.Venue {
	return domain.Venue{
		MunicipalityID:  municipalityID,
		Name:            req.Name,
		Address:         req.Address,
		MaxCapacity:     req.MaxCapacity,
		SpaceSqm:        req.SpaceSqm,
		RentalFeePerDay: req.RentalFeePerDay,
	}
}

type CreateInstitutionRequest struct {
	Kind         domain.Kind `json:"kind" enums:"UNIVERSITY,SCHOOL,PROVIDER"`
	Name         string      `json:"name"`
	ContactEmail string      `json:"contact_email"`
}

func (req *CreateInstitutionRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.ContactEmail, is.Email),
	)
}

type CreateActivityRequest struct {
	Name                     string `json:"name"`
	Description              string `json:"description"`
	Type                     string `json:"type"`
	SuggestedDurationMinutes int    `json:"suggested_duration_minutes"`
	SuggestedMaxParticipants int    `json:"suggested_max_participants"`
}

func (req *CreateActivityRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Type, validation.Length(0, 50)),
		validation.Field(&req.SuggestedDurationMinutes, validation.Min(0)),
		validation.Field(&req.SuggestedMaxParticipants, validation.Min(0)),
	)
}

func (req *CreateActivityRequest) Activity(providerID uint) domain.Activity {
	return domain.Activity{
		ProviderID:               providerID,
		Name:                     req.Name,
		Description:              req.Description,
		Type:                     req.Type,
		SuggestedDurationMinutes: req.SuggestedDurationMinutes,
		SuggestedMaxParticipants: req.SuggestedMaxParticipants,
		Active:                   true,
	}
}
