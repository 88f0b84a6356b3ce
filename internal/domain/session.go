package domain

import "strings"

// Session is the authenticated user's identity and credentials. It is held
// in memory by the auth orchestrator and optionally mirrored to persistent
// storage when the stay-logged-in preference is set.
type Session struct {
	// UserID is the backend user identifier.
	UserID string

	// Email is the account email address.
	Email string

	// Name is the display name shown in the UI.
	Name string

	// AccessToken is the bearer token attached to authenticated requests.
	AccessToken string

	// RefreshToken is optional; the backend may not issue one.
	RefreshToken string
}

// DeriveName returns a display name from an email address when the backend
// provides no name metadata: the local part before '@', or "User" when the
// email is unusable.
func DeriveName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "User"
	}

	return local
}
