package auth

import (
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Capability names an operation that requires authorization.
type Capability string

const (
	CapabilityViewProfile     Capability = "view_profile"
	CapabilityViewUser        Capability = "view_user"
	CapabilityUpdateUser      Capability = "update_user"
	CapabilityChangePassword  Capability = "change_password"
	CapabilityManageUsers     Capability = "manage_users"
	CapabilityAdministerUsers Capability = "administer_users"
	CapabilityListTechnicians Capability = "list_technicians"
	CapabilityCreateTicket    Capability = "create_ticket"
	CapabilityAssignTicket    Capability = "assign_ticket"
	CapabilityWorkTicket      Capability = "work_ticket"
	CapabilityViewTickets     Capability = "view_tickets"
	CapabilityDeleteTicket    Capability = "delete_ticket"
	CapabilityManageCatalog   Capability = "manage_catalog"
)

// roleGrants is the role half of the capability lattice. The four roles do not
// form a strict total order: e.g. TECHNICIAN works tickets MANAGER-style ops
// don't imply, and only ADMIN holds the destructive capabilities.
var roleGrants = map[Capability]map[domain.Role]bool{
	CapabilityViewProfile: {
		domain.RoleUser: true, domain.RoleTechnician: true, domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityViewUser: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityUpdateUser: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityChangePassword: {
		domain.RoleAdmin: true,
	},
	CapabilityManageUsers: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityAdministerUsers: {
		domain.RoleAdmin: true,
	},
	CapabilityListTechnicians: {
		domain.RoleTechnician: true, domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityCreateTicket: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityAssignTicket: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityWorkTicket: {
		domain.RoleTechnician: true, domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityViewTickets: {
		domain.RoleTechnician: true, domain.RoleManager: true, domain.RoleAdmin: true,
	},
	CapabilityDeleteTicket: {
		domain.RoleAdmin: true,
	},
	CapabilityManageCatalog: {
		domain.RoleManager: true, domain.RoleAdmin: true,
	},
}

// selfServiceable capabilities are granted when the caller owns the target
// resource, regardless of role. Checked before any role rule.
var selfServiceable = map[Capability]bool{
	CapabilityViewUser:       true,
	CapabilityUpdateUser:     true,
	CapabilityChangePassword: true,
}

// Authorize decides whether the caller may exercise the capability, optionally
// against a resource owned by resourceOwnerID. Deny is the default: a nil or
// deactivated caller is rejected outright, and allowing requires either the
// self-service rule or an explicit role grant.
func Authorize(caller *domain.User, capability Capability, resourceOwnerID *string) error {
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !caller.IsActive {
		return apperrors.NewForbidden("account deactivated")
	}
	if selfServiceable[capability] && resourceOwnerID != nil && caller.ID == *resourceOwnerID {
		return nil
	}
	if roleGrants[capability][caller.Role] {
		return nil
	}
	return apperrors.NewForbidden("insufficient role")
}

// Capabilities returns the capability set a role grants, sorted for stable
// output. Self-service grants are identity-based and not included.
func Capabilities(role domain.Role) []Capability {
	var caps []Capability
	for capability, roles := range roleGrants {
		if roles[role] {
			caps = append(caps, capability)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
