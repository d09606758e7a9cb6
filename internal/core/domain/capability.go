package domain

// Capability is a named permission bit checked by Authorize.
type Capability string

const (
	CanCreateUsers   Capability = "canCreateUsers"
	CanEditUsers     Capability = "canEditUsers"
	CanDeleteUsers   Capability = "canDeleteUsers"
	CanCreateIssues  Capability = "canCreateIssues"
	CanEditIssues    Capability = "canEditIssues"
	CanDeleteIssues  Capability = "canDeleteIssues"
	CanViewReports   Capability = "canViewReports"
	CanExportReports Capability = "canExportReports"
	CanViewAllIssues Capability = "canViewAllIssues"
	CanAssignIssues  Capability = "canAssignIssues"
)

// Capabilities lists every capability in display order.
var Capabilities = []Capability{
	CanCreateUsers,
	CanEditUsers,
	CanDeleteUsers,
	CanCreateIssues,
	CanEditIssues,
	CanDeleteIssues,
	CanViewReports,
	CanExportReports,
	CanViewAllIssues,
	CanAssignIssues,
}

type capabilitySet map[Capability]struct{}

func setOf(caps ...Capability) capabilitySet {
	s := make(capabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// permissionTable is read-only after package initialisation.
var permissionTable = map[Role]capabilitySet{
	RoleAdmin: setOf(Capabilities...),
	RoleManager: setOf(
		CanCreateIssues,
		CanEditIssues,
		CanDeleteIssues,
		CanViewReports,
		CanExportReports,
		CanViewAllIssues,
		CanAssignIssues,
	),
	RoleTechnician: setOf(
		CanViewAllIssues,
	),
}

// Authorize reports whether role holds capability. Unknown roles and unknown
// capabilities are denied.
func Authorize(role Role, capability Capability) bool {
	caps, ok := permissionTable[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// Permissions returns the full grant map for role, with every capability
// present as a key.
func Permissions(role Role) map[Capability]bool {
	out := make(map[Capability]bool, len(Capabilities))
	for _, c := range Capabilities {
		out[c] = Authorize(role, c)
	}
	return out
}
