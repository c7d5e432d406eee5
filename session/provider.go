// Package session owns the token lifecycle: it acquires, persists, decodes,
// refreshes, and invalidates the bearer token pair, and it is the single
// authority every other component reads session state from.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/autherrors"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/tokenstore"
)

// DefaultExpirySkew is how close to its expiry an access token may get
// before it is treated as already expired.
const DefaultExpirySkew = 10 * time.Second

// Provider is the sole owner and mutator of session state. Views invoke its
// operations; the guard and the authenticated client observe its state. All
// mutations swap the whole snapshot, so no observer ever sees tokens without
// an identity or a half-updated pair.
type Provider struct {
	api    *apiclient.Client
	authed *apiclient.AuthenticatedClient
	store  tokenstore.Store

	skew   time.Duration
	logger zerolog.Logger

	lock        sync.RWMutex
	state       State
	initialized bool

	subLock     sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int

	refreshGroup singleflight.Group
}

var _ apiclient.TokenSource = (*Provider)(nil)

// ProviderOption defines a function type to modify the Provider instance.
type ProviderOption func(*Provider)

// WithHTTPClient sets the HTTP client used for all backend calls.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.api = apiclient.NewClient(p.api.BaseURL(), apiclient.WithHTTPClient(httpClient))
	}
}

// WithExpirySkew sets the expiry tolerance window.
func WithExpirySkew(skew time.Duration) ProviderOption {
	return func(p *Provider) {
		p.skew = skew
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates the session provider for the backend at baseURL,
// persisting tokens in store.
func NewProvider(baseURL string, store tokenstore.Store, options ...ProviderOption) (*Provider, error) {
	if baseURL == "" {
		return nil, errors.New("[NewProvider] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[NewProvider] token store is required")
	}

	provider := &Provider{
		api:         apiclient.NewClient(baseURL),
		store:       store,
		skew:        DefaultExpirySkew,
		logger:      zerolog.Nop(),
		state:       State{Initializing: true},
		subscribers: make(map[int]func(State)),
	}

	for _, opt := range options {
		opt(provider)
	}

	provider.authed = apiclient.NewAuthenticatedClient(provider.api, provider)

	return provider, nil
}

// State returns the current session snapshot.
func (p *Provider) State() State {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.state
}

// Client returns the authenticated request pipeline bound to this session.
func (p *Provider) Client() *apiclient.AuthenticatedClient {
	return p.authed
}

// Subscribe registers fn to be called with every new snapshot. The returned
// cancel function removes the subscription.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.subLock.Lock()
	defer p.subLock.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.subLock.Lock()
		defer p.subLock.Unlock()
		delete(p.subscribers, id)
	}
}

// Initialize reads the token store and derives the starting session state.
// It runs exactly once; later calls are no-ops. A malformed stored token is
// discarded and the store cleared, so startup degrades to logged-out rather
// than an invalid authenticated state. Initializing flips to false at the
// end regardless of outcome and never becomes true again.
func (p *Provider) Initialize() {
	p.lock.Lock()
	if p.initialized {
		p.lock.Unlock()
		return
	}
	p.initialized = true

	newState := State{}
	pair, _ := p.store.Load()
	if pair != nil {
		identity, err := token.DecodeIdentity(pair.Access)
		if err != nil {
			p.logger.Warn().Err(err).Msg("discarding undecodable stored token")
			_ = p.store.Clear()
		} else {
			newState = State{Tokens: pair, Identity: identity}
		}
	}

	p.state = newState
	p.lock.Unlock()

	p.notify(newState)
}

// Login exchanges credentials for a token pair. A token pair whose decoded
// verified claim is false is discarded without touching state or store: an
// issued-but-unverified pair must never become the active session.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	status, raw, err := p.api.DoJSON(ctx, http.MethodPost, apiclient.RouteTokenIssue, apiclient.TokenRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		p.logger.Debug().Int("status", status).Msg("token issue rejected")
		return autherrors.ErrInvalidCredentials
	}

	var issued apiclient.TokenResponse
	if err := json.Unmarshal(raw, &issued); err != nil {
		return fmt.Errorf("%w: malformed token response", autherrors.ErrNetwork)
	}

	pair := token.TokenPair{Access: issued.Access, Refresh: issued.Refresh}
	if !pair.Valid() {
		return fmt.Errorf("%w: incomplete token response", autherrors.ErrNetwork)
	}

	identity, err := token.DecodeIdentity(pair.Access)
	if err != nil {
		return fmt.Errorf("%w: undecodable access token", autherrors.ErrNetwork)
	}

	if !identity.Verified {
		return autherrors.ErrAccountUnverified
	}

	if err := p.setSession(pair, identity); err != nil {
		return err
	}

	p.logger.Info().Str("subject", identity.Subject).Msg("logged in")
	return nil
}

// Register creates a new account. Success never logs the user in; the
// session state is untouched either way. Validation failures surface the
// most specific backend message: email first, then password, then the
// non-field error, then a generic fallback.
func (p *Provider) Register(ctx context.Context, email, username, password, password2 string) error {
	status, raw, err := p.api.DoJSON(ctx, http.MethodPost, apiclient.RouteRegister, apiclient.RegisterRequest{
		Email:     email,
		Username:  username,
		Password:  password,
		Password2: password2,
	})
	if err != nil {
		return err
	}
	if status == http.StatusCreated {
		return nil
	}

	var body apiclient.RegistrationErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if validationErr := body.FirstError(); validationErr != nil {
			return validationErr
		}
	}
	return &autherrors.ValidationError{Message: "please check your inputs and try again"}
}

// Logout unconditionally clears the session and the token store. It is
// idempotent: logging out while already logged out still clears storage
// and reports success.
func (p *Provider) Logout() {
	p.clearSession()
	p.logger.Info().Msg("logged out")
}

// Token implements apiclient.TokenSource. It returns a currently valid
// access token, exchanging the refresh token for a new one first when the
// current token is within the expiry skew. Concurrent callers that find the
// token expired share a single refresh exchange; a rejected refresh token is
// fatal to the whole session.
func (p *Provider) Token(ctx context.Context) (string, error) {
	st := p.State()
	if st.Tokens == nil {
		return "", autherrors.ErrUnauthenticated
	}
	if st.Identity != nil && !st.Identity.Expired(p.skew) {
		return st.Tokens.Access, nil
	}

	refreshed, err, _ := p.refreshGroup.Do("refresh", func() (any, error) {
		return p.refreshTokens(ctx)
	})
	if err != nil {
		return "", err
	}
	return refreshed.(string), nil
}

func (p *Provider) refreshTokens(ctx context.Context) (string, error) {
	// A flight that just finished may have refreshed while this caller
	// was waiting to start its own.
	st := p.State()
	if st.Tokens == nil {
		return "", autherrors.ErrUnauthenticated
	}
	if st.Identity != nil && !st.Identity.Expired(p.skew) {
		return st.Tokens.Access, nil
	}

	status, raw, err := p.api.DoJSON(ctx, http.MethodPost, apiclient.RouteTokenRefresh, apiclient.RefreshRequest{
		Refresh: st.Tokens.Refresh,
	})
	if err != nil {
		// Transport failure is transient: the session stays intact and
		// the next request tries again.
		return "", err
	}
	if status != http.StatusOK {
		p.logger.Info().Int("status", status).Msg("refresh token rejected, clearing session")
		p.clearSession()
		return "", autherrors.ErrSessionExpired
	}

	var refreshed apiclient.RefreshResponse
	if err := json.Unmarshal(raw, &refreshed); err != nil || refreshed.Access == "" {
		return "", fmt.Errorf("%w: malformed refresh response", autherrors.ErrNetwork)
	}

	pair := token.TokenPair{Access: refreshed.Access, Refresh: st.Tokens.Refresh}
	if refreshed.Refresh != "" {
		// The backend rotated the refresh token as well.
		pair.Refresh = refreshed.Refresh
	}

	identity, err := token.DecodeIdentity(pair.Access)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable refreshed token", autherrors.ErrNetwork)
	}

	if err := p.setSession(pair, identity); err != nil {
		return "", err
	}
	return pair.Access, nil
}

// setSession persists the pair and swaps the snapshot in one critical
// section, keeping store and state in step.
func (p *Provider) setSession(pair token.TokenPair, identity *token.Identity) error {
	p.lock.Lock()
	if err := p.store.Save(pair); err != nil {
		p.lock.Unlock()
		return autherrors.Wrapf(err, "persist tokens")
	}
	p.state = State{Tokens: &pair, Identity: identity, Initializing: p.state.Initializing}
	newState := p.state
	p.lock.Unlock()

	p.notify(newState)
	return nil
}

func (p *Provider) clearSession() {
	p.lock.Lock()
	if err := p.store.Clear(); err != nil {
		p.logger.Warn().Err(err).Msg("clearing token store failed")
	}
	p.state = State{Initializing: p.state.Initializing}
	newState := p.state
	p.lock.Unlock()

	p.notify(newState)
}

func (p *Provider) notify(state State) {
	p.subLock.Lock()
	subscribers := make([]func(State), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subscribers = append(subscribers, fn)
	}
	p.subLock.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}
