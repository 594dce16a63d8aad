package domain

import "time"

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationAttended   RegistrationStatus = "ATTENDED"
	RegistrationNoShow     RegistrationStatus = "NO_SHOW"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
)

type StudentRegistration struct {
	ID           uint               `json:"id"`
	ExhibitionID uint               `json:"exhibition_id"`
	StudentID    uint               `json:"student_id"`
	Status       RegistrationStatus `json:"status"`
	Approved     bool               `json:"approved"`
	RegisteredAt time.Time          `json:"registered_at"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`
	AttendedAt   *time.Time         `json:"attended_at,omitempty"`
}

type ExhibitionFeedback struct {
	ID           uint      `json:"id"`
	ExhibitionID uint      `json:"exhibition_id"`
	StudentID    uint      `json:"student_id"`
	Rating       int       `json:"rating"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
}

// Occupancy is what counts against an exhibition's visitor capacity.
type Occupancy struct {
	ApprovedStudents int
	BoothSeats       int
}

func (o Occupancy) Total() int {
	return o.ApprovedStudents + o.BoothSeats
}
