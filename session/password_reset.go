package session

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/autherrors"
)

// RequestPasswordReset asks the backend to email a reset link. It never
// touches session state.
func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	status, _, err := p.api.DoJSON(ctx, http.MethodPost, apiclient.RoutePasswordReset, apiclient.PasswordResetRequest{
		Email: email,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &autherrors.ValidationError{Message: "unable to send the reset link, please try again"}
	}
	return nil
}

// ConfirmPasswordReset completes a reset started from an emailed link. A
// mismatched confirmation fails locally before any network call. Backend
// failures are reported generically: the backend deliberately does not
// distinguish a bad link from an expired one.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, uid, resetToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return autherrors.ErrPasswordMismatch
	}

	status, _, err := p.api.DoJSON(ctx, http.MethodPost, apiclient.PasswordResetConfirmPath(uid, resetToken), apiclient.PasswordResetConfirmRequest{
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &autherrors.ValidationError{Message: "failed to reset password, the link may be invalid or expired"}
	}
	return nil
}
