package domain

// Role is the single access level assigned to a user. Authorization checks
// test membership of the user's role in a handler's allowed set.
type Role string

const (
	RoleAdmin             Role = "Admin"
	RoleProductionManager Role = "Production Manager"
	RoleInventoryOfficer  Role = "Inventory Officer"
	RoleHROfficer         Role = "HR Officer"
	RoleAccountant        Role = "Accountant"
	RoleViewer            Role = "CEO/Viewer"
)

// DefaultRole is assigned to users provisioned via the external identity
// exchange. It is the least privileged role.
const DefaultRole = RoleViewer

var allRoles = map[Role]struct{}{
	RoleAdmin:             {},
	RoleProductionManager: {},
	RoleInventoryOfficer:  {},
	RoleHROfficer:         {},
	RoleAccountant:        {},
	RoleViewer:            {},
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}
