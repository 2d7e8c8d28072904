package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

const (
	RoleMember     = "member"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// AuthUser is the authenticated caller. Role always comes from the stored
// user, never from the request.
type AuthUser struct {
	ID       int64
	FullName string
	Role     string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsAdmin reports whether user is an admin or superadmin.
func IsAdmin(user *AuthUser) bool {
	return user != nil && (strings.EqualFold(user.Role, RoleAdmin) || strings.EqualFold(user.Role, RoleSuperadmin))
}

// RequireUser returns the caller or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireRole allows the caller when their role is one of roles. Superadmins
// pass every admin check.
func RequireRole(ctx context.Context, roles ...string) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	for _, role := range roles {
		if strings.EqualFold(user.Role, role) {
			return nil
		}
		if strings.EqualFold(role, RoleAdmin) && strings.EqualFold(user.Role, RoleSuperadmin) {
			return nil
		}
	}
	return ErrForbidden
}
