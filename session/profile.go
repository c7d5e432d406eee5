package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/autherrors"
)

// ProfileUpdate carries the editable profile fields. Image, when present,
// is the raw bytes of a new profile image.
type ProfileUpdate struct {
	FullName  string
	Bio       string
	Image     []byte
	ImageName string
}

// GetProfile fetches the profile of the logged-in user.
func (p *Provider) GetProfile(ctx context.Context) (*apiclient.Profile, error) {
	if !p.State().Authenticated() {
		return nil, autherrors.ErrUnauthenticated
	}

	status, raw, err := p.authed.Get(ctx, apiclient.RouteProfile)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, detailFailure(raw, "failed to load profile")
	}

	var profile apiclient.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrNetwork, "malformed profile response")
	}
	return &profile, nil
}

// UpdateProfile submits changed profile fields. The request is encoded as
// multipart form data when an image payload is present and as JSON
// otherwise; the encoding follows the content, not a caller flag. On
// success the fields the backend echoes back are merged into the current
// identity without replacing it, since not every field is echoed.
func (p *Provider) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if !p.State().Authenticated() {
		return autherrors.ErrUnauthenticated
	}

	var (
		status int
		raw    []byte
		err    error
	)

	if len(update.Image) > 0 {
		fileName := update.ImageName
		if fileName == "" {
			fileName = "profile-image"
		}
		fields := map[string]string{
			"full_name": update.FullName,
			"bio":       update.Bio,
		}
		status, raw, err = p.authed.DoMultipart(ctx, http.MethodPut, apiclient.RouteProfileUpdate, fields, "image", fileName, update.Image)
	} else {
		body := map[string]string{
			"full_name": update.FullName,
			"bio":       update.Bio,
		}
		status, raw, err = p.authed.DoJSON(ctx, http.MethodPut, apiclient.RouteProfileUpdate, body)
	}
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return detailFailure(raw, "failed to update profile, please try again")
	}

	var updated map[string]any
	if err := json.Unmarshal(raw, &updated); err == nil && len(updated) > 0 {
		p.mergeIdentity(updated)
	}
	return nil
}

// ChangePassword changes the logged-in user's password. The returned detail
// is the backend's confirmation message.
func (p *Provider) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	if !p.State().Authenticated() {
		return "", autherrors.ErrUnauthenticated
	}

	status, raw, err := p.authed.DoJSON(ctx, http.MethodPost, apiclient.RouteChangePassword, apiclient.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		return "", err
	}

	var detail apiclient.DetailResponse
	_ = json.Unmarshal(raw, &detail)

	if status != http.StatusOK {
		return "", detailFailure(raw, "an error occurred, please try again")
	}
	return detail.Detail, nil
}

// mergeIdentity folds updated profile fields into a copy of the current
// identity and swaps the snapshot. Tokens are untouched.
func (p *Provider) mergeIdentity(fields map[string]any) {
	p.lock.Lock()
	if p.state.Identity == nil {
		p.lock.Unlock()
		return
	}

	merged := *p.state.Identity
	merged.Extra = make(map[string]any, len(p.state.Identity.Extra)+len(fields))
	for name, value := range p.state.Identity.Extra {
		merged.Extra[name] = value
	}
	merged.Merge(fields)

	p.state = State{Tokens: p.state.Tokens, Identity: &merged, Initializing: p.state.Initializing}
	newState := p.state
	p.lock.Unlock()

	p.notify(newState)
}

// detailFailure surfaces the backend's detail message when one is present
// and falls back to the given generic message.
func detailFailure(raw []byte, fallback string) error {
	var detail apiclient.DetailResponse
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		return &autherrors.ValidationError{Message: detail.Detail}
	}
	return &autherrors.ValidationError{Message: fallback}
}
