// Package models defines client-side data models shared by the auth
// services, the secure token store, and the API client.
package models

import "time"

// User is the normalized account record returned by the backend.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DisplayName string   `json:"displayName,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
	Verified    bool     `json:"verified"`
	School      string   `json:"school,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// GoogleUserInfo is the normalized identity decoded from a Google ID token.
type GoogleUserInfo struct {
	ID         string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Photo      string
}

// TokenPair holds the opaque bearer credentials. Either field may be empty
// when nothing is stored.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ValidationResult is the ephemeral outcome of a token validation call.
// ExpiresAt is the zero time when the server did not report an expiry and
// none could be read from the token itself.
type ValidationResult struct {
	IsValid      bool
	ExpiresAt    time.Time
	NeedsRefresh bool
}

// AuthResult is the discriminated result of a user-facing auth operation.
// On failure Error carries a message suitable for direct display.
type AuthResult struct {
	Success              bool
	User                 *User
	AccessToken          string
	RefreshToken         string
	RequiresVerification bool
	Error                string
}
