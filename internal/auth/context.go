// ABOUTME: Identity context for tracking the authenticated guest through handlers
// ABOUTME: Provides WithIdentity/FromContext for propagation via context

package auth

import (
	"context"

	"github.com/gahenax/hotel-gateway/internal/store"
)

// Identity holds the authenticated guest information resolved from a request.
// A nil *Identity means the caller is anonymous; that is not an error, the
// gatekeeper decides what anonymity means per operation.
type Identity struct {
	GuestID string
	Email   string
	Name    string
	Role    string // viewer, customer, operator, admin
}

// IsAdmin returns true if the guest holds the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Role == store.RoleAdmin
}

// identityContextKey is the key type for storing Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if the
// caller is anonymous.
func FromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityContextKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}
