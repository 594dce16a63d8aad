package domain

import "time"

type Organization struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Institution is a participant organization: a university, a school or an activity provider.
type Institution struct {
	ID           uint      `json:"id"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	AdminID      uint      `json:"admin_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Activity struct {
	ID                       uint      `json:"id"`
	ProviderID               uint      `json:"provider_id"`
	Name                     string    `json:"name"`
	Description              string    `json:"description"`
	Type                     string    `json:"type"`
	SuggestedDurationMinutes int       `json:"suggested_duration_minutes"`
	SuggestedMaxParticipants int       `json:"suggested_max_participants"`
	Active                   bool      `json:"active"`
	CreatedAt                time.Time `json:"created_at"`
}
