package apiclient

import (
	"fmt"
	"net/url"
)

// Backend route constants
// All backend endpoints are defined here to ensure consistency and prevent typos
const (
	// Token Routes
	RouteTokenIssue   = "/api/token/"
	RouteTokenRefresh = "/api/token/refresh/"

	// Account Routes
	RouteRegister = "/api/register/"

	// Profile Routes
	RouteProfile        = "/api/profile/"
	RouteProfileUpdate  = "/api/profile/update/"
	RouteChangePassword = "/api/profile/change-password/"

	// Password Reset Routes
	RoutePasswordReset = "/password-reset/"
)

// PasswordResetConfirmPath builds the reset-confirm endpoint path for the
// uid/token pair carried in the emailed reset link.
func PasswordResetConfirmPath(uid, resetToken string) string {
	return fmt.Sprintf("/api/reset-password-confirm/%s/%s/",
		url.PathEscape(uid), url.PathEscape(resetToken))
}
