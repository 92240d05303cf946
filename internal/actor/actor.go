// Package actor carries the authenticated user through context.Context so that
// audit entries can name who performed a change without threading it through
// every call.
package actor

import "context"

// Actor identifies the user behind a request.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

type ctxKey struct{}

// WithActor returns a child context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor on ctx. ok is false for system-initiated work.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	a, ok := ctx.Value(ctxKey{}).(Actor)
	if !ok || a.UserID == "" {
		return Actor{}, false
	}
	return a, true
}

// UserID returns a pointer to the acting user's id, or nil when there is none.
func UserID(ctx context.Context) *string {
	a, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	id := a.UserID
	return &id
}
