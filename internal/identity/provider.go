package identity

import "context"

// Profile is the normalized view of an identity-provider user record.
// It contains facts only; role mapping and username derivation happen in
// the reconcile package.
type Profile struct {
	ID        string
	Email     string // primary email, empty when the provider has none
	Username  string // provider-side handle, may be empty
	FirstName string
	LastName  string
	AvatarURL string
	RoleHint  string // free-text role from provider metadata, may be empty
}

// Provider fetches user profiles from the identity provider.
type Provider interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}
