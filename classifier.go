package store

import "fmt"

// Role identifies the semantic bucket a registered member belongs to.
type Role int

const (
	// RoleNone marks a name the classifier has not seen; such members are
	// ordinary helpers and never surface in the assembled configuration.
	RoleNone Role = iota
	// RoleState marks a field contributing to the state snapshot.
	RoleState
	// RoleGetter marks an accessor exposed as a computed property.
	RoleGetter
	// RoleAction marks a method bound with the full action context.
	RoleAction
	// RoleMutation marks a method bound against the module's own branch.
	RoleMutation
)

func (r Role) String() string {
	switch r {
	case RoleState:
		return "state"
	case RoleGetter:
		return "getter"
	case RoleAction:
		return "action"
	case RoleMutation:
		return "mutation"
	default:
		return "none"
	}
}

// reservedNames are context members the binders inject later. Registering any
// of them as state/getter/action/mutation would allow infinite self-reference,
// so classification rejects them outright.
var reservedNames = map[string]struct{}{
	"state":       {},
	"getters":     {},
	"actions":     {},
	"mutations":   {},
	"rootState":   {},
	"rootGetters": {},
	"commit":      {},
	"dispatch":    {},
}

// memberTable is the typed {name -> role} table built at definition time. It
// partitions members deterministically: each name carries exactly one role.
type memberTable struct {
	roles map[string]Role
	order []string
}

func newMemberTable() memberTable {
	return memberTable{roles: map[string]Role{}}
}

// assign records name under role, failing on empty names, reserved names, and
// dual-role registration.
func (t *memberTable) assign(name string, role Role) error {
	if name == "" {
		return ErrMemberName
	}
	if _, reserved := reservedNames[name]; reserved {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if existing, ok := t.roles[name]; ok {
		return &RoleConflictError{Member: name, Existing: existing, Requested: role}
	}
	t.roles[name] = role
	t.order = append(t.order, name)
	return nil
}

// role reports the classification for name, RoleNone when unregistered.
func (t memberTable) role(name string) Role {
	return t.roles[name]
}

// members returns names in registration order.
func (t memberTable) members() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
