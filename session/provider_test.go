package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/autherrors"
	"github.com/jrsteele09/go-auth-client/internal/authtest"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/tokenstore/storefake"
)

const (
	testUserID    = "user-1"
	testUserEmail = "john.doe@example.com"
	testPassword  = "password123"
)

// fixture holds the provider under test, its fake store, and a mux-routed
// fake backend that individual tests register handlers on.
type fixture struct {
	store    *storefake.FakeStore
	provider *session.Provider
	router   *mux.Router
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	router := mux.NewRouter()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	store := storefake.NewFakeStore()
	provider, err := session.NewProvider(server.URL, store)
	require.NoError(t, err)

	return &fixture{store: store, provider: provider, router: router, server: server}
}

func mintAccess(t *testing.T, verified bool, expiresAt time.Time) string {
	t.Helper()
	return authtest.Mint(t, authtest.TokenSpec{
		Subject:   testUserID,
		Email:     testUserEmail,
		Verified:  verified,
		ExpiresAt: expiresAt,
		Extra:     map[string]any{"full_name": "John Doe"},
	})
}

func (f *fixture) seedSession(t *testing.T, expiresAt time.Time) token.TokenPair {
	t.Helper()
	pair := token.TokenPair{
		Access:  mintAccess(t, true, expiresAt),
		Refresh: authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour)),
	}
	require.NoError(t, f.store.Save(pair))
	f.provider.Initialize()
	require.True(t, f.provider.State().Authenticated())
	return pair
}

func (f *fixture) handleTokenIssue(t *testing.T, status int, response apiclient.TokenResponse) {
	f.router.HandleFunc(apiclient.RouteTokenIssue, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}).Methods("POST")
}

func TestProvider_Initialize(t *testing.T) {
	t.Run("empty store starts logged out", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.provider.State().Initializing)

		f.provider.Initialize()

		state := f.provider.State()
		require.False(t, state.Initializing)
		require.False(t, state.Authenticated())
		require.Nil(t, state.Identity)
	})

	t.Run("stored pair restores the session", func(t *testing.T) {
		f := newFixture(t)
		pair := token.TokenPair{
			Access:  mintAccess(t, true, time.Now().Add(time.Hour)),
			Refresh: authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour)),
		}
		require.NoError(t, f.store.Save(pair))

		f.provider.Initialize()

		state := f.provider.State()
		require.True(t, state.Authenticated())
		require.Equal(t, pair, *state.Tokens)
		require.Equal(t, testUserEmail, state.Identity.Email)
	})

	t.Run("malformed stored token clears the store", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Save(token.TokenPair{Access: "not-a-jwt", Refresh: "r"}))

		f.provider.Initialize()

		state := f.provider.State()
		require.False(t, state.Authenticated())
		require.Nil(t, f.store.Stored())
	})

	t.Run("runs exactly once and Initializing never flips back", func(t *testing.T) {
		f := newFixture(t)
		var snapshots []session.State
		f.provider.Subscribe(func(s session.State) { snapshots = append(snapshots, s) })

		f.provider.Initialize()
		f.provider.Initialize()
		require.Len(t, snapshots, 1)

		f.handleTokenIssue(t, http.StatusOK, apiclient.TokenResponse{
			Access:  mintAccess(t, true, time.Now().Add(time.Hour)),
			Refresh: authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour)),
		})
		require.NoError(t, f.provider.Login(context.Background(), testUserEmail, testPassword))
		f.provider.Logout()

		for _, s := range snapshots {
			require.False(t, s.Initializing)
		}
	})
}

func TestProvider_Login(t *testing.T) {
	t.Run("success populates state and store", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		access := mintAccess(t, true, time.Now().Add(time.Hour))
		refresh := authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour))
		f.handleTokenIssue(t, http.StatusOK, apiclient.TokenResponse{Access: access, Refresh: refresh})

		require.NoError(t, f.provider.Login(context.Background(), testUserEmail, testPassword))

		state := f.provider.State()
		require.True(t, state.Authenticated())
		require.Equal(t, access, state.Tokens.Access)
		require.Equal(t, testUserID, state.Identity.Subject)
		require.Equal(t, "John Doe", state.Identity.Extra["full_name"])

		stored := f.store.Stored()
		require.NotNil(t, stored)
		require.Equal(t, *state.Tokens, *stored)
	})

	t.Run("bad credentials leave state untouched", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		f.handleTokenIssue(t, http.StatusUnauthorized, apiclient.TokenResponse{})

		err := f.provider.Login(context.Background(), testUserEmail, "badpass")
		require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
		require.False(t, f.provider.State().Authenticated())
		require.Zero(t, f.store.SaveCalls)
	})

	t.Run("unverified account never becomes the active session", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		f.handleTokenIssue(t, http.StatusOK, apiclient.TokenResponse{
			Access:  mintAccess(t, false, time.Now().Add(time.Hour)),
			Refresh: authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour)),
		})

		err := f.provider.Login(context.Background(), testUserEmail, testPassword)
		require.ErrorIs(t, err, autherrors.ErrAccountUnverified)
		require.False(t, f.provider.State().Authenticated())
		require.Zero(t, f.store.SaveCalls)
		require.Nil(t, f.store.Stored())
	})

	t.Run("unreachable backend is a network error", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		f.server.Close()

		err := f.provider.Login(context.Background(), testUserEmail, testPassword)
		require.ErrorIs(t, err, autherrors.ErrNetwork)
	})
}

func TestProvider_Register(t *testing.T) {
	registerWith := func(t *testing.T, status int, body string) error {
		f := newFixture(t)
		f.provider.Initialize()
		f.router.HandleFunc(apiclient.RouteRegister, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}).Methods("POST")
		return f.provider.Register(context.Background(), testUserEmail, "john", testPassword, testPassword)
	}

	t.Run("created means success with no session change", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		f.router.HandleFunc(apiclient.RouteRegister, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}).Methods("POST")

		require.NoError(t, f.provider.Register(context.Background(), testUserEmail, "john", testPassword, testPassword))
		require.False(t, f.provider.State().Authenticated())
		require.Zero(t, f.store.SaveCalls)
	})

	t.Run("email error wins over the rest", func(t *testing.T) {
		err := registerWith(t, http.StatusBadRequest,
			`{"email":["email already in use"],"password":["too short"],"non_field_errors":["nope"]}`)
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "email", validationErr.Field)
		require.Equal(t, "email already in use", validationErr.Message)
	})

	t.Run("password error wins over non-field", func(t *testing.T) {
		err := registerWith(t, http.StatusBadRequest,
			`{"password":["too short"],"non_field_errors":["nope"]}`)
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "password", validationErr.Field)
	})

	t.Run("empty error body falls back to a generic message", func(t *testing.T) {
		err := registerWith(t, http.StatusBadRequest, `{}`)
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Empty(t, validationErr.Field)
		require.NotEmpty(t, validationErr.Message)
	})

	t.Run("unparsable error body falls back to a generic message", func(t *testing.T) {
		err := registerWith(t, http.StatusInternalServerError, `<html>oops</html>`)
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestProvider_Logout(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t, time.Now().Add(time.Hour))

	f.provider.Logout()
	require.False(t, f.provider.State().Authenticated())
	require.Nil(t, f.store.Stored())

	// Logging out again still clears storage and reports success.
	f.provider.Logout()
	require.False(t, f.provider.State().Authenticated())
	require.Equal(t, 2, f.store.ClearCalls)
}

func TestProvider_ConfirmPasswordReset(t *testing.T) {
	t.Run("mismatched passwords fail before any network call", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		var hits atomic.Int32
		f.router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		})

		err := f.provider.ConfirmPasswordReset(context.Background(), "Mg", "tok", "x", "y")
		require.ErrorIs(t, err, autherrors.ErrPasswordMismatch)
		require.Zero(t, hits.Load())
	})

	t.Run("posts to the uid/token route", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		var gotUID, gotToken string
		f.router.HandleFunc("/api/reset-password-confirm/{uid}/{token}/", func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			gotUID, gotToken = vars["uid"], vars["token"]
			var body apiclient.PasswordResetConfirmRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, body.NewPassword, body.ConfirmPassword)
			w.WriteHeader(http.StatusOK)
		}).Methods("POST")

		require.NoError(t, f.provider.ConfirmPasswordReset(context.Background(), "Mg", "abc-123", "newpass", "newpass"))
		require.Equal(t, "Mg", gotUID)
		require.Equal(t, "abc-123", gotToken)
	})

	t.Run("backend rejection is reported generically", func(t *testing.T) {
		f := newFixture(t)
		f.provider.Initialize()
		f.router.HandleFunc("/api/reset-password-confirm/{uid}/{token}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}).Methods("POST")

		err := f.provider.ConfirmPasswordReset(context.Background(), "Mg", "expired", "newpass", "newpass")
		var validationErr *autherrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestProvider_RequestPasswordReset(t *testing.T) {
	f := newFixture(t)
	f.provider.Initialize()
	f.router.HandleFunc(apiclient.RoutePasswordReset, func(w http.ResponseWriter, r *http.Request) {
		var body apiclient.PasswordResetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, testUserEmail, body.Email)
		w.WriteHeader(http.StatusOK)
	}).Methods("POST")

	require.NoError(t, f.provider.RequestPasswordReset(context.Background(), testUserEmail))
}

func TestProvider_StateInvariant(t *testing.T) {
	// identity present iff tokens present, in every observable snapshot.
	f := newFixture(t)
	var lock sync.Mutex
	var snapshots []session.State
	f.provider.Subscribe(func(s session.State) {
		lock.Lock()
		defer lock.Unlock()
		snapshots = append(snapshots, s)
	})

	f.provider.Initialize()
	f.handleTokenIssue(t, http.StatusOK, apiclient.TokenResponse{
		Access:  mintAccess(t, true, time.Now().Add(time.Hour)),
		Refresh: authtest.MintRefresh(t, testUserID, time.Now().Add(24*time.Hour)),
	})
	require.NoError(t, f.provider.Login(context.Background(), testUserEmail, testPassword))
	f.provider.Logout()

	lock.Lock()
	defer lock.Unlock()
	require.NotEmpty(t, snapshots)
	for _, s := range snapshots {
		require.Equal(t, s.Tokens != nil, s.Identity != nil)
	}
}
