package domain

import "context"

// Privilege levels carried by the identity claim. Higher includes lower.
type Privilege int

const (
	PrivilegeStaff   Privilege = 10
	PrivilegeKitchen Privilege = 20
	PrivilegeManager Privilege = 30
	PrivilegeAdmin   Privilege = 40
)

// ParsePrivilege maps the role names issued by the identity service.
func ParsePrivilege(role string) (Privilege, bool) {
	switch role {
	case "staff", "waiter", "cashier":
		return PrivilegeStaff, true
	case "kitchen", "cook":
		return PrivilegeKitchen, true
	case "manager":
		return PrivilegeManager, true
	case "admin", "owner":
		return PrivilegeAdmin, true
	}
	return 0, false
}

// Actor is the identity claim attached to every call.
type Actor struct {
	TenantID  string
	StaffID   string
	Privilege Privilege
}

func (a Actor) Can(min Privilege) bool {
	return a.Privilege >= min
}

// Require returns a forbidden error if the actor is below min.
func (a Actor) Require(min Privilege) error {
	if a.TenantID == "" {
		return Forbidden("missing tenant claim")
	}
	if !a.Can(min) {
		return Forbidden("privilege %d required", min)
	}
	return nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
