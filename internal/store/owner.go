package store

import "context"

// ownerContextKey is the context key for OwnerInfo.
type ownerContextKey struct{}

// OwnerInfo identifies whose data a remote call operates on. The user id is
// an opaque value handed to us by the authentication provider.
type OwnerInfo struct {
	UserID string
}

// Validate checks that the owner id is present.
func (o *OwnerInfo) Validate() error {
	if o == nil || o.UserID == "" {
		return ErrMissingOwner
	}
	return nil
}

// ContextWithOwner returns a context carrying owner.
func ContextWithOwner(ctx context.Context, owner *OwnerInfo) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, owner)
}

// OwnerFromContext extracts the owner from ctx. Returns ErrMissingOwner when
// absent or invalid - fail closed, never an empty scope.
func OwnerFromContext(ctx context.Context) (*OwnerInfo, error) {
	owner, ok := ctx.Value(ownerContextKey{}).(*OwnerInfo)
	if !ok || owner == nil {
		return nil, ErrMissingOwner
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return owner, nil
}

// HasOwner reports whether ctx carries a valid owner.
func HasOwner(ctx context.Context) bool {
	_, err := OwnerFromContext(ctx)
	return err == nil
}
