package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Municipality struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	AdminID   uint      `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Venue struct {
	ID              uint            `json:"id"`
	MunicipalityID  uint            `json:"municipality_id"`
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	MaxCapacity     int             `json:"max_capacity"`
	SpaceSqm        float64         `json:"space_sqm"`
	RentalFeePerDay decimal.Decimal `json:"rental_fee_per_day" swaggertype:"string"`
	Active          bool            `json:"active"`
}

// BoothsFor returns how many standard booths fit in the venue.
func (v Venue) BoothsFor(boothSqm float64) int {
	if boothSqm <= 0 {
		return 0
	}

	return int(v.SpaceSqm / boothSqm)
}

type VenueRequestStatus string

const (
	VenueRequestPending  VenueRequestStatus = "PENDING"
	VenueRequestApproved VenueRequestStatus = "APPROVED"
	VenueRequestRejected VenueRequestStatus = "REJECTED"
)

type VenueRequest struct {
	ID                   uint               `json:"id"`
	ExhibitionID         uint               `json:"exhibition_id"`
	VenueID              uint               `json:"venue_id"`
	Status               VenueRequestStatus `json:"status"`
	OrgNotes             string             `json:"org_notes,omitempty"`
	MunicipalityResponse string             `json:"municipality_response,omitempty"`
	ResponseDeadline     *time.Time         `json:"response_deadline,omitempty"`
	RequestedAt          time.Time          `json:"requested_at"`
	ReviewedAt           *time.Time         `json:"reviewed_at,omitempty"`
	ReviewerID           *uint              `json:"reviewer_id,omitempty"`
}

// VenueBooking is an approved request together with the dates it holds the venue.
type VenueBooking struct {
	RequestID    uint
	ExhibitionID uint
	StartDate    time.Time
	EndDate      time.Time
}

// DatesOverlap compares two inclusive date ranges at day granularity.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !day(aStart).After(day(bEnd)) && !day(bStart).After(day(aEnd))
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
