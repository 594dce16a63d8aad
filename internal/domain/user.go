package domain

import "time"

type Role string

const (
	RoleOrgOwner          Role = "ORG_OWNER"
	RoleUniversityAdmin   Role = "UNIVERSITY_ADMIN"
	RoleSchoolAdmin       Role = "SCHOOL_ADMIN"
	RoleProviderAdmin     Role = "PROVIDER_ADMIN"
	RoleMunicipalityAdmin Role = "MUNICIPALITY_ADMIN"
	RoleStudent           Role = "STUDENT"
	RoleDeveloper         Role = "DEVELOPER"
)

var Roles = []Role{
	RoleOrgOwner,
	RoleUniversityAdmin,
	RoleSchoolAdmin,
	RoleProviderAdmin,
	RoleMunicipalityAdmin,
	RoleStudent,
	RoleDeveloper,
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   Role
}

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}
