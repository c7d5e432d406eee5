package apiclient

import (
	"github.com/jrsteele09/go-auth-client/autherrors"
)

// TokenRequest is the credentials payload for the token-issue endpoint.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the pair returned by a successful token issue.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token. The backend may or may not
// rotate the refresh token; Refresh is empty when it does not.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// RegistrationErrorBody is the validation error shape the registration
// endpoint returns on a non-created status.
type RegistrationErrorBody struct {
	Email          []string `json:"email"`
	Password       []string `json:"password"`
	NonFieldErrors []string `json:"non_field_errors"`
}

// FirstError extracts the most specific validation message, preferring
// field-level errors (email, then password) over non-field errors. It
// returns nil when the body carries no message at all.
func (b RegistrationErrorBody) FirstError() *autherrors.ValidationError {
	switch {
	case len(b.Email) > 0:
		return &autherrors.ValidationError{Field: "email", Message: b.Email[0]}
	case len(b.Password) > 0:
		return &autherrors.ValidationError{Field: "password", Message: b.Password[0]}
	case len(b.NonFieldErrors) > 0:
		return &autherrors.ValidationError{Message: b.NonFieldErrors[0]}
	}
	return nil
}

// Profile is the profile resource served by the backend.
type Profile struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// ChangePasswordRequest is the authenticated password-change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest asks for a reset link to be emailed.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest completes a reset started from an email link.
type PasswordResetConfirmRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// DetailResponse is the generic `{"detail": "..."}` body many endpoints use
// for both success and failure messages.
type DetailResponse struct {
	Detail string `json:"detail"`
}
