package domain

import "time"

type BoothType string

const (
	BoothUniversity       BoothType = "UNIVERSITY"
	BoothActivityProvider BoothType = "ACTIVITY_PROVIDER"
)

const UnassignedZone = "Unassigned"

type Booth struct {
	ID              uint      `json:"id"`
	ExhibitionID    uint      `json:"exhibition_id"`
	BoothType       BoothType `json:"booth_type"`
	ParticipationID uint      `json:"participation_id"`
	ActivityID      *uint     `json:"activity_id,omitempty"`
	Zone            string    `json:"zone"`
	BoothNumber     int       `json:"booth_number"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxParticipants int       `json:"max_participants"`
	CreatedAt       time.Time `json:"created_at"`
}

type BoothAllocation struct {
	BoothID     uint   `json:"booth_id"`
	Zone        string `json:"zone"`
	BoothNumber int    `json:"booth_number"`
}
