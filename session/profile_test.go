package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/autherrors"
	"github.com/jrsteele09/go-auth-client/session"
)

func TestProvider_UpdateProfile(t *testing.T) {
	t.Run("requires an active session", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()

		err := f.provider.UpdateProfile(context.Background(), session.ProfileUpdate{Bio: "hi"})
		require.ErrorIs(t, err, autherrors.ErrUnauthenticated)
	})

	t.Run("no image sends JSON and merges the echoed fields", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))

		var gotContentType string
		f.router.HandleFunc(apiclient.RouteProfileUpdate, func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			// The backend echoes only what changed.
			require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"full_name": body["full_name"]}))
		}).Methods("PUT")

		err := f.provider.UpdateProfile(context.Background(), session.ProfileUpdate{FullName: "John Q. Doe", Bio: "new bio"})
		require.NoError(t, err)
		require.Equal(t, "application/json", gotContentType)

		identity := f.provider.State().Identity
		require.Equal(t, "John Q. Doe", identity.Extra["full_name"])
		// Unechoed claims survive the partial merge.
		require.Equal(t, testUserEmail, identity.Email)
	})

	t.Run("image payload switches to multipart", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))

		var gotContentType, gotFullName string
		f.router.HandleFunc(apiclient.RouteProfileUpdate, func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotFullName = r.FormValue("full_name")
			_, _, err := r.FormFile("image")
			require.NoError(t, err)
			_, _ = w.Write([]byte(`{}`))
		}).Methods("PUT")

		err := f.provider.UpdateProfile(context.Background(), session.ProfileUpdate{
			FullName:  "John Q. Doe",
			Image:     []byte{0x89, 0x50},
			ImageName: "avatar.png",
		})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
		require.Equal(t, "John Q. Doe", gotFullName)
	})

	t.Run("failure surfaces the backend detail", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))
		f.router.HandleFunc(apiclient.RouteProfileUpdate, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"image too large"}`))
		}).Methods("PUT")

		err := f.provider.UpdateProfile(context.Background(), session.ProfileUpdate{Bio: "x"})
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "image too large", validationErr.Message)
	})
}

func TestProvider_GetProfile(t *testing.T) {
	t.Run("requires an active session", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()

		_, err := f.provider.GetProfile(context.Background())
		require.ErrorIs(t, err, autherrors.ErrUnauthenticated)
	})

	t.Run("returns the profile resource", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))
		f.router.HandleFunc(apiclient.RouteProfile, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(apiclient.Profile{
				Username: "john",
				Email:    testUserEmail,
				FullName: "John Doe",
				Image:    "https://cdn.example.com/p.png",
			}))
		}).Methods("GET")

		profile, err := f.provider.GetProfile(context.Background())
		require.NoError(t, err)
		require.Equal(t, "john", profile.Username)
		require.Equal(t, "https://cdn.example.com/p.png", profile.Image)
	})
}

func TestProvider_ChangePassword(t *testing.T) {
	t.Run("requires an active session", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()

		_, err := f.provider.ChangePassword(context.Background(), "old", "new")
		require.ErrorIs(t, err, autherrors.ErrUnauthenticated)
	})

	t.Run("returns the backend detail on success", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))
		f.router.HandleFunc(apiclient.RouteChangePassword, func(w http.ResponseWriter, r *http.Request) {
			var body apiclient.ChangePasswordRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "old", body.CurrentPassword)
			require.Equal(t, "new", body.NewPassword)
			require.NoError(t, json.NewEncoder(w).Encode(apiclient.DetailResponse{Detail: "Password updated successfully"}))
		}).Methods("POST")

		detail, err := f.provider.ChangePassword(context.Background(), "old", "new")
		require.NoError(t, err)
		require.Equal(t, "Password updated successfully", detail)
	})

	t.Run("surfaces the failure detail", func(t *testing.T) {
		f := newFixture(t)
		f.seedSession(t, time.Now().Add(time.Hour))
		f.router.HandleFunc(apiclient.RouteChangePassword, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"current password is incorrect"}`))
		}).Methods("POST")

		_, err := f.provider.ChangePassword(context.Background(), "wrong", "new")
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "current password is incorrect", validationErr.Message)
	})
}
