package users

import "context"

// RoleScope restricts account lookups to one side of the admin divide. The
// same email can hold two logically distinct identities under different
// scopes; login paths always query within one scope.
type RoleScope int

const (
	// ScopeAny matches regardless of roles.
	ScopeAny RoleScope = iota
	// ScopeUser matches accounts without the admin role.
	ScopeUser
	// ScopeAdmin matches accounts holding the admin role.
	ScopeAdmin
)

// Repository defines persistence operations for account documents.
type Repository interface {
	FindByEmail(ctx context.Context, email string, scope RoleScope) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	List(ctx context.Context, offset, limit int64, appOnly bool) ([]User, int64, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	IsAdmin(ctx context.Context, email string) (bool, error)
}
