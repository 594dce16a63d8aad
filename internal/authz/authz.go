// Package authz decides whether an actor may perform an operation on a resource, given the
// chain of owners that resource hangs from.
package authz

import (
	"fmt"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

var ErrUnauthorized = domain.ErrUnauthorized

type Capability string

const (
	ManageExhibition          Capability = "manage_exhibition"
	ActAsParticipant          Capability = "act_as_participant"
	CancelParticipation       Capability = "cancel_participation"
	ReviewVenue               Capability = "review_venue"
	CancelExhibition          Capability = "cancel_exhibition"
	ActAsStudent              Capability = "act_as_student"
	ManageStudentRegistration Capability = "manage_student_registration"
	ViewExhibition            Capability = "view_exhibition"
)

// OwnerChain holds the owners of a resource, resolved by read-only joins
// (participation -> exhibition -> organization -> owner). Zero ids mean "not part of the chain".
type OwnerChain struct {
	OrganizationOwnerID uint
	ParticipantKind     domain.Kind
	ParticipantAdminID  uint
	MunicipalityAdminID uint
	StudentID           uint
}

// Check is the single authorization decision used by every service operation.
func Check(actor domain.Actor, chain OwnerChain, capability Capability) error {
	if actor.Role == domain.RoleDeveloper {
		return nil
	}

	if allowed(actor, chain, capability) {
		return nil
	}

	return fmt.Errorf("user %d (%s) cannot %s -> %w", actor.UserID, actor.Role, capability, ErrUnauthorized)
}

func allowed(actor domain.Actor, chain OwnerChain, capability Capability) bool {
	switch capability {
	case ManageExhibition:
		return isOwner(actor, domain.RoleOrgOwner, chain.OrganizationOwnerID)
	case ActAsParticipant:
		return chain.ParticipantKind.Valid() &&
			isOwner(actor, chain.ParticipantKind.Capabilities().AdminRole, chain.ParticipantAdminID)
	case CancelParticipation:
		return allowed(actor, chain, ManageExhibition) || allowed(actor, chain, ActAsParticipant)
	case ReviewVenue:
		return isOwner(actor, domain.RoleMunicipalityAdmin, chain.MunicipalityAdminID)
	case CancelExhibition, ViewExhibition:
		return allowed(actor, chain, ManageExhibition) || allowed(actor, chain, ReviewVenue)
	case ActAsStudent:
		return isOwner(actor, domain.RoleStudent, chain.StudentID)
	case ManageStudentRegistration:
		return allowed(actor, chain, ManageExhibition) || allowed(actor, chain, ActAsStudent)
	default:
		return false
	}
}

func isOwner(actor domain.Actor, role domain.Role, ownerID uint) bool {
	return ownerID != 0 && actor.Role == role && actor.UserID == ownerID
}
