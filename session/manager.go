// Package session owns the client-side authentication lifecycle: restoring
// a persisted session at startup, interactive login and signup, logout, and
// keeping the local identity snapshot in sync with the backend.
//
// Failures of interactive operations are surfaced to the caller and leave
// the state untouched; failures of the background restore refresh do NOT
// evict the session. A transiently unreachable backend must not log the
// user out of an otherwise valid local session.
package session

import (
	"context"
	"io"
	"sync"

	"github.com/aubattle/battle-client/claims"
	"github.com/aubattle/battle-client/identity"
	"github.com/aubattle/battle-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Manager is the session state machine. All exported methods are safe for
// concurrent use; Login, Signup, and Restore are additionally serialized by
// a single-slot in-flight guard, so an overlapping call fails fast with
// OperationInFlightErr instead of racing.
type Manager struct {
	api   API
	store *tokenstore.Store
	log   zerolog.Logger

	lock      sync.Mutex
	state     State
	inFlight  bool
	listeners []Listener
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a session manager. The initial state is
// StatusRestoring; callers are expected to invoke Restore once at startup.
func NewManager(api API, store *tokenstore.Store, options ...ManagerOption) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[NewManager] api is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	m := &Manager{
		api:   api,
		store: store,
		log:   zerolog.Nop(),
		state: State{Status: StatusRestoring},
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// State returns the current session snapshot.
func (m *Manager) State() State {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state
}

// Subscribe registers a listener for state changes. The listener is called
// immediately with the current state, then once per transition.
func (m *Manager) Subscribe(fn Listener) {
	m.lock.Lock()
	m.listeners = append(m.listeners, fn)
	s := m.state
	m.lock.Unlock()
	fn(s)
}

// setState replaces the state and notifies listeners in registration order.
// Listeners run outside the lock, so they are free to read the manager.
func (m *Manager) setState(s State) {
	m.lock.Lock()
	m.state = s
	listeners := append([]Listener(nil), m.listeners...)
	m.lock.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// replaceIfCurrent swaps the state only when the session the operation
// started from is still the live one; a Logout that landed while the
// network call was in flight wins otherwise.
func (m *Manager) replaceIfCurrent(credential string, next State) bool {
	m.lock.Lock()
	if m.state.Status != StatusAuthenticated || m.state.Credential != credential {
		m.lock.Unlock()
		return false
	}
	m.state = next
	listeners := append([]Listener(nil), m.listeners...)
	m.lock.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
	return true
}

// beginOp claims the single in-flight operation slot.
func (m *Manager) beginOp() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.inFlight {
		return OperationInFlightErr
	}
	m.inFlight = true
	return nil
}

func (m *Manager) endOp() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.inFlight = false
}

// Restore resolves the boot state from the token store. With nothing
// stored it transitions straight to StatusUnauthenticated without touching
// the network. With a stored session it transitions to StatusAuthenticated
// on the cached identity first, then refreshes the profile: a successful
// refresh replaces and re-persists the identity, a failed one only marks
// the state stale. Restore itself fails only on storage errors.
func (m *Manager) Restore(ctx context.Context) error {
	if err := m.beginOp(); err != nil {
		return err
	}
	defer m.endOp()

	credential, cached, ok, err := m.store.Load()
	if err != nil {
		m.setState(State{Status: StatusUnauthenticated})
		return errors.Wrap(err, "[Manager.Restore] load persisted session")
	}
	if !ok {
		m.log.Debug().Msg("no persisted session")
		m.setState(State{Status: StatusUnauthenticated})
		return nil
	}

	// Optimistic: the cached identity is good enough to unblock the caller.
	m.setState(State{Status: StatusAuthenticated, Identity: cached, Credential: credential})

	prof, err := m.api.Profile(ctx, credential)
	if err != nil {
		// Deliberate fallback-over-fail-closed: the backend being down is
		// not evidence the session is invalid.
		m.log.Warn().Err(err).Msg("profile refresh failed, keeping cached session")
		m.replaceIfCurrent(credential, State{Status: StatusAuthenticated, Identity: cached, Credential: credential, Stale: true})
		return nil
	}

	fresh := prof.Identity()
	if !fresh.Valid() {
		m.log.Warn().Msg("profile refresh returned unusable identity, keeping cached session")
		m.replaceIfCurrent(credential, State{Status: StatusAuthenticated, Identity: cached, Credential: credential, Stale: true})
		return nil
	}

	if m.replaceIfCurrent(credential, State{Status: StatusAuthenticated, Identity: fresh, Credential: credential}) {
		m.persist(credential, fresh)
	}
	return nil
}

// Login establishes a session from interactive credentials. Any failure
// (rejected credentials, unreachable backend, failed hydration) leaves the
// state at StatusUnauthenticated and is returned to the caller.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.beginOp(); err != nil {
		return err
	}
	defer m.endOp()

	data := identity.LoginData{Email: email, Password: password}
	if err := data.Validate(); err != nil {
		return err
	}

	result, err := m.api.Login(ctx, data)
	if err != nil {
		m.setState(State{Status: StatusUnauthenticated})
		return err
	}
	if result.Token == "" {
		m.setState(State{Status: StatusUnauthenticated})
		return EmptyTokenErr
	}

	id, err := m.hydrate(ctx, result.Token)
	if err != nil {
		m.setState(State{Status: StatusUnauthenticated})
		return errors.Wrap(err, "[Manager.Login] hydrate identity")
	}
	if id.Role == "" {
		id.Role = identity.ParseRole(result.Role)
	}

	m.persist(result.Token, id)
	m.setState(State{Status: StatusAuthenticated, Identity: id, Credential: result.Token})
	m.log.Info().Int64("user_id", id.ID).Msg("logged in")
	return nil
}

// Signup registers an account and establishes a session. The endpoint
// returns only a token, so the subject id comes from a non-verifying decode
// of the token payload; a token that cannot be decoded fails the whole flow
// with nothing persisted. Profile hydration is attempted but a hydration
// failure is tolerated, the claims-derived identity standing in until the
// next refresh.
func (m *Manager) Signup(ctx context.Context, data identity.SignupData) error {
	if err := m.beginOp(); err != nil {
		return err
	}
	defer m.endOp()

	if err := data.Validate(); err != nil {
		return err
	}

	result, err := m.api.Signup(ctx, data)
	if err != nil {
		m.setState(State{Status: StatusUnauthenticated})
		return err
	}
	if result.Token == "" {
		m.setState(State{Status: StatusUnauthenticated})
		return EmptyTokenErr
	}

	cl, err := claims.DecodeUntrusted(result.Token)
	if err != nil {
		m.setState(State{Status: StatusUnauthenticated})
		return errors.Wrap(err, "[Manager.Signup] decode token claims")
	}

	id := identity.Identity{
		ID:     cl.Subject,
		Name:   data.Name,
		Email:  data.Email,
		Handle: data.Handle,
		Phone:  data.Phone,
		Role:   identity.ParseRole(cl.Role),
	}

	if hydrated, err := m.hydrate(ctx, result.Token); err == nil {
		id = hydrated
	} else {
		m.log.Warn().Err(err).Msg("signup hydration failed, using claims-derived identity")
	}

	m.persist(result.Token, id)
	m.setState(State{Status: StatusAuthenticated, Identity: id, Credential: result.Token})
	m.log.Info().Int64("user_id", id.ID).Msg("signed up")
	return nil
}

// hydrate builds the full identity for a fresh credential: profile fields
// from GET /profile, balance from the coins endpoint.
func (m *Manager) hydrate(ctx context.Context, credential string) (identity.Identity, error) {
	prof, err := m.api.Profile(ctx, credential)
	if err != nil {
		return identity.Identity{}, err
	}
	id := prof.Identity()
	if !id.Valid() {
		return identity.Identity{}, errors.New("[Manager.hydrate] profile response missing id")
	}

	coins, err := m.api.CoinBalance(ctx, credential, id.ID)
	if err != nil {
		return identity.Identity{}, err
	}
	// The coins endpoint is authoritative, including when it reports zero.
	id.Balance = coins
	id.Normalize()
	return id, nil
}

// Logout tears the session down. It is synchronous, idempotent, and never
// fails; a storage error is logged and the in-memory session is dropped
// regardless.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	m.setState(State{Status: StatusUnauthenticated})
}

// UpdateProfile applies a partial identity update while authenticated. The
// backend's view of the profile wins when it returns one; otherwise the
// patch is merged shallowly into the current identity.
func (m *Manager) UpdateProfile(ctx context.Context, patch identity.Patch) error {
	st := m.State()
	if !st.Authenticated() {
		return NotAuthenticatedErr
	}
	if patch.Empty() {
		return nil
	}

	prof, err := m.api.UpdateProfile(ctx, st.Credential, patch)
	if err != nil {
		return err
	}

	merged := patch.Apply(st.Identity)
	if fresh := prof.Identity(); fresh.Valid() {
		merged = fresh
	}

	if !m.replaceIfCurrent(st.Credential, State{Status: StatusAuthenticated, Identity: merged, Credential: st.Credential}) {
		return NotAuthenticatedErr
	}
	m.persist(st.Credential, merged)
	return nil
}

// ReplaceAvatar uploads a new avatar and records its URL on the identity.
func (m *Manager) ReplaceAvatar(ctx context.Context, filename string, file io.Reader) error {
	st := m.State()
	if !st.Authenticated() {
		return NotAuthenticatedErr
	}

	avatarURL, err := m.api.UploadAvatar(ctx, st.Credential, filename, file)
	if err != nil {
		return err
	}

	id := st.Identity
	id.AvatarURL = avatarURL
	if !m.replaceIfCurrent(st.Credential, State{Status: StatusAuthenticated, Identity: id, Credential: st.Credential}) {
		return NotAuthenticatedErr
	}
	m.persist(st.Credential, id)
	return nil
}

// ChangePassword rotates the account password. The session and credential
// are unchanged; the backend keeps existing tokens valid.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	st := m.State()
	if !st.Authenticated() {
		return "", NotAuthenticatedErr
	}
	return m.api.ChangePassword(ctx, st.Credential, oldPassword, newPassword)
}

// RefreshBalance re-reads the coin balance and updates the identity.
func (m *Manager) RefreshBalance(ctx context.Context) (float64, error) {
	st := m.State()
	if !st.Authenticated() {
		return 0, NotAuthenticatedErr
	}

	coins, err := m.api.CoinBalance(ctx, st.Credential, st.Identity.ID)
	if err != nil {
		return 0, err
	}

	id := st.Identity
	id.Balance = coins
	id.Normalize()
	if !m.replaceIfCurrent(st.Credential, State{Status: StatusAuthenticated, Identity: id, Credential: st.Credential}) {
		return 0, NotAuthenticatedErr
	}
	m.persist(st.Credential, id)
	return id.Balance, nil
}

// persist writes the session pair, logging rather than failing the calling
// operation: an unwritable state file should not block a login that already
// succeeded against the backend.
func (m *Manager) persist(credential string, id identity.Identity) {
	if err := m.store.Save(credential, id); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist session")
	}
}
