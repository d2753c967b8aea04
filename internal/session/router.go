package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"spotivr/internal/authflow"
	"spotivr/pkg/logging"
)

// State represents the router's position in the authentication lifecycle.
type State int

const (
	// StateChecking is the transient startup state while a stored session
	// is validated.
	StateChecking State = iota

	// StateUnauthenticated means a login is required.
	StateUnauthenticated

	// StateAwaitingLogin means a consent flow is open and the router is
	// waiting for its result.
	StateAwaitingLogin

	// StateAuthenticated means a valid session is held and a renewal is
	// scheduled.
	StateAuthenticated

	// StateRefreshing means a scheduled renewal exchange is in flight.
	StateRefreshing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingLogin:
		return "awaiting_login"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Router lifecycle errors.
var (
	// ErrAlreadyAuthenticated is returned by Login while a valid session
	// is held; a redundant consent flow could race with a renewal.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrLoginUnavailable is returned by Login during startup checking or
	// while a renewal exchange is in flight.
	ErrLoginUnavailable = errors.New("login not available in current state")
)

// errorAuthorizing is the message surfaced when the consent flow fails.
const errorAuthorizing = "Error authorizing Spotify"

// CredentialStore persists the session across restarts.
type CredentialStore interface {
	Load() (Session, bool)
	Save(Session) error
	Clear() error
}

// TokenValidator checks a candidate access token against the identity
// provider.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) bool
}

// Exchanger turns an authorization code or refresh token into a session
// via the backend proxy.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code, callbackURI string) (Session, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (Session, error)
}

// RouterConfig carries the provider parameters for the authorize URL.
type RouterConfig struct {
	// ClientID is the provider-issued public client identifier.
	ClientID string

	// Scopes are the permission scopes requested at login.
	Scopes []string

	// AuthorizeEndpoint is the provider's consent screen. Empty selects
	// the provider default.
	AuthorizeEndpoint string
}

// Router orchestrates the authentication lifecycle: startup validation of
// a stored session, interactive login through the consent flow, and
// scheduled token renewal. All transitions are serialized by an internal
// mutex; collaborators observe them through the event bus.
type Router struct {
	mu    sync.Mutex
	state State
	sess  Session

	cfg       RouterConfig
	store     CredentialStore
	validator TokenValidator
	exchanger Exchanger
	flow      authflow.Channel
	sched     *RefreshScheduler
	bus       *Bus

	// Injected in tests.
	now      func() time.Time
	newState func() string
}

// NewRouter wires a router from its collaborators. Call Start to run the
// startup check.
func NewRouter(cfg RouterConfig, store CredentialStore, validator TokenValidator, exchanger Exchanger, flow authflow.Channel) *Router {
	r := &Router{
		state:     StateChecking,
		cfg:       cfg,
		store:     store,
		validator: validator,
		exchanger: exchanger,
		flow:      flow,
		bus:       NewBus(),
		now:       time.Now,
		newState:  uuid.NewString,
	}
	r.sched = NewRefreshScheduler(r.onRefreshDue)
	return r
}

// Events returns the lifecycle event bus.
func (r *Router) Events() *Bus {
	return r.bus
}

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Token returns the current access token, or "" when unauthenticated.
func (r *Router) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess.AccessToken
}

// Start runs the startup check: rehydrate the stored session, validate
// it against the identity provider, and route to the home or login
// screen accordingly. A validation failure is silent; it surfaces only
// as the login route.
func (r *Router) Start(ctx context.Context) {
	sess, ok := r.store.Load()
	valid := ok && r.validator.Validate(ctx, sess.AccessToken)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !valid {
		logging.Info("Session", "No valid stored session, login required")
		r.state = StateUnauthenticated
		r.bus.Publish(Event{Kind: EventRouteChanged, Route: RouteLogin})
		return
	}

	logging.Info("Session", "Stored session is valid (expires %s)", sess.ExpiresAt.Format(time.RFC3339))
	r.becomeAuthenticatedLocked(sess, RouteHome)
}

// Login opens the consent flow. It is rejected while already
// authenticated and while a renewal is in flight; a login requested
// while another consent flow is pending replaces that flow.
func (r *Router) Login(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateAuthenticated:
		logging.Warn("Session", "Login requested while already authenticated, ignoring")
		return ErrAlreadyAuthenticated
	case StateChecking, StateRefreshing:
		return fmt.Errorf("%w: %s", ErrLoginUnavailable, r.state)
	}

	authorizeURL, err := authflow.BuildAuthorizeURL(r.cfg.AuthorizeEndpoint, authflow.AuthorizeParams{
		ClientID:    r.cfg.ClientID,
		RedirectURI: r.flow.RedirectURI(),
		Scopes:      r.cfg.Scopes,
		State:       r.newState(),
	})
	if err != nil {
		return err
	}

	results, err := r.flow.Open(ctx, authorizeURL)
	if err != nil {
		return err
	}

	r.state = StateAwaitingLogin
	go r.awaitLogin(ctx, results)
	return nil
}

// awaitLogin consumes the one-shot consent flow result.
func (r *Router) awaitLogin(ctx context.Context, results <-chan authflow.Result) {
	result, ok := <-results
	if !ok {
		return
	}

	// A replaced flow belongs to a newer Login call; its waiter owns the
	// state from here.
	if errors.Is(result.Err, authflow.ErrReplaced) {
		logging.Debug("Session", "Consent flow replaced by a newer login")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAwaitingLogin {
		// Stale result after logout or shutdown.
		logging.Debug("Session", "Ignoring consent result in state %s", r.state)
		return
	}

	if errors.Is(result.Err, authflow.ErrClosed) {
		r.state = StateUnauthenticated
		return
	}

	if !result.Success() {
		logging.Warn("Session", "Consent flow failed: %v", result.Err)
		r.state = StateUnauthenticated
		r.bus.Publish(Event{Kind: EventError, Message: errorAuthorizing})
		return
	}

	// Any pending renewal is cancelled before an exchange begins.
	r.sched.Disarm()

	sess, err := r.exchanger.ExchangeCode(ctx, result.Code, r.flow.RedirectURI())
	if err != nil {
		logging.Error("Session", err, "Authorization code exchange failed")
		r.state = StateUnauthenticated
		r.bus.Publish(Event{Kind: EventError, Message: fmt.Sprintf("Internal error: %v", err)})
		return
	}

	r.persistLocked(sess)
	r.becomeAuthenticatedLocked(sess, RouteHome)
}

// onRefreshDue is the scheduler callback: renew the session with the
// refresh token captured at arm time.
func (r *Router) onRefreshDue(refreshToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAuthenticated {
		logging.Debug("Session", "Ignoring refresh timer in state %s", r.state)
		return
	}
	r.state = StateRefreshing

	sess, err := r.exchanger.ExchangeRefreshToken(context.Background(), refreshToken)
	if err != nil {
		// Terminal for this cycle: no retry loop, a fresh login is
		// required.
		logging.Error("Session", err, "Scheduled token renewal failed")
		r.state = StateUnauthenticated
		r.bus.Publish(Event{Kind: EventError, Message: fmt.Sprintf("Internal error: %v", err)})
		return
	}

	r.persistLocked(sess)
	// No route change: the user stays on the current screen.
	r.becomeAuthenticatedLocked(sess, "")
}

// SetToken accepts an externally supplied access token while
// authenticated, without a validation round trip. The refresh token and
// expiry are unchanged.
func (r *Router) SetToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAuthenticated {
		return fmt.Errorf("cannot set token in state %s", r.state)
	}

	r.sess.AccessToken = token
	r.persistLocked(r.sess)
	r.bus.Publish(Event{Kind: EventTokenChanged, Token: token})
	return nil
}

// Logout clears the session: the stored credentials are removed, a
// pending renewal or consent flow is cancelled, and the GUI is routed to
// the login screen.
func (r *Router) Logout() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sched.Disarm()
	r.flow.Close()

	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}

	r.sess = Session{}
	r.state = StateUnauthenticated
	r.bus.Publish(Event{Kind: EventRouteChanged, Route: RouteLogin})
	return nil
}

// Close shuts the router down: cancels timers and flows and closes the
// event bus.
func (r *Router) Close() {
	r.sched.Disarm()
	r.flow.Close()
	r.bus.Close()
}

// becomeAuthenticatedLocked installs a session: arms the renewal timer,
// then emits the token change and, when route is non-empty, the route
// change. Requires r.mu held.
func (r *Router) becomeAuthenticatedLocked(sess Session, route Route) {
	r.sess = sess
	r.state = StateAuthenticated

	r.sched.Arm(sess.TTL(r.now()), sess.RefreshToken)

	r.bus.Publish(Event{Kind: EventTokenChanged, Token: sess.AccessToken})
	if route != "" {
		r.bus.Publish(Event{Kind: EventRouteChanged, Route: route})
	}
}

// persistLocked writes the session to the credential store. A write
// failure is logged but does not fail the transition; the session is
// still valid for this run.
func (r *Router) persistLocked(sess Session) {
	if err := r.store.Save(sess); err != nil {
		logging.Warn("Session", "Failed to persist session: %v", err)
	}
}
