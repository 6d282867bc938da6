// internal/auth/policy.go
package auth

import "networth-ledger/internal/domain"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int64
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the caller holds the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// CanMutate reports whether caller may change or delete a resource owned by owner.
func CanMutate(caller Identity, owner int64) bool {
	return caller.UserID == owner || caller.IsAdmin()
}

// ResolveFilter returns the owner whose data a listing covers.
// Members always see their own data; an admin sees the requested owner, or their own when none is given.
func ResolveFilter(caller Identity, requested *int64) int64 {
	if caller.IsAdmin() && requested != nil {
		return *requested
	}
	return caller.UserID
}
