package auth

import (
	"context"
)

// Well-known roles carried in token claims
const (
	RoleAdmin   = "admin"
	RoleSales   = "sales"
	RoleViewer  = "viewer"
	RoleService = "service"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// ActorID returns the user ID, or "system" when no user is attached.
// Lifecycle history rows always need an actor, including transitions
// applied by background jobs.
func ActorID(ctx context.Context) string {
	if user, ok := FromContext(ctx); ok {
		return user.UserID
	}
	return "system"
}

// ActorName returns the display name of the acting user, if any
func ActorName(ctx context.Context) string {
	if user, ok := FromContext(ctx); ok {
		return user.DisplayName
	}
	return "System"
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an administrator
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanEditQuotations reports whether the user may create or mutate
// quotations. Viewers get read-only access.
func (u *UserContext) CanEditQuotations() bool {
	return u.HasAnyRole(RoleAdmin, RoleSales, RoleService)
}
