package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/types"
	"go.uber.org/zap"
)

type Status string

const (
	// StatusUnknown: a token exists but the identity fetch has not settled.
	// Consumers must treat this as loading, not as logged out, otherwise
	// every restart bounces through the login screen.
	StatusUnknown       Status = "unknown"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Snapshot is the session state published to consumers. The token itself
// never leaves the manager.
type Snapshot struct {
	Status             Status             `json:"status"`
	Profile            *types.UserProfile `json:"profile"`
	OnboardingRequired bool               `json:"onboarding_required"`
}

// Manager owns the token lifecycle. At most one token is active; every
// token change bumps the generation counter so a still-running identity
// fetch for the old token is discarded on arrival (last-write-wins).
type Manager struct {
	client *api.Client
	tokens *TokenFile
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
	token      string
	status     Status
	profile    *types.UserProfile
	onChange   []func(Snapshot)
}

func NewManager(client *api.Client, tokens *TokenFile, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		tokens: tokens,
		logger: logger,
		status: StatusUnknown,
	}
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// OnChange registers a callback invoked with a snapshot after every
// session state change, outside the manager lock.
func (m *Manager) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Login exchanges credentials for a token and runs the identity fetch.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	m.setToken(token)
	return m.refreshIdentity(ctx)
}

// Register creates an account. It does not log in; the captured flow sends
// the user back to the login form.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	return m.client.Register(ctx, email, password)
}

// Logout drops the token, the persisted copy and the identity.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()

	m.logger.Info("Session cleared")
	m.notify()
}

// Restore re-attaches a persisted token on startup. A token the identity
// endpoint rejects with 401 is treated as expired and cleared, which is
// exactly the logout end state.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		m.mu.Lock()
		m.status = StatusAnonymous
		m.mu.Unlock()
		m.notify()
		return nil
	}

	if expired(token) {
		m.logger.Info("Persisted token already expired, skipping restore")
		m.mu.Lock()
		m.clearLocked()
		m.mu.Unlock()
		m.notify()
		return nil
	}

	m.setToken(token)

	err = m.refreshIdentity(ctx)
	if errors.Is(err, api.ErrUnauthorized) {
		// refreshIdentity already cleared the session.
		return nil
	}
	return err
}

// UpdateProfile writes the editable fields and merges the result into the
// cached identity. Completing the name for the first time ends onboarding.
func (m *Manager) UpdateProfile(ctx context.Context, fullName, phoneNumber string) error {
	hadName := m.Snapshot().Profile.HasFullName()

	profile, err := m.client.UpdateMe(ctx, fullName, phoneNumber)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return nil
	}
	m.profile = profile
	m.mu.Unlock()

	if !hadName && profile.HasFullName() {
		m.logger.Info("Onboarding completed", zap.String("email", profile.Email))
	}
	m.notify()
	return nil
}

// setToken installs a new token, persists it and supersedes any in-flight
// identity fetch.
func (m *Manager) setToken(token string) {
	m.mu.Lock()
	m.token = token
	m.generation++
	m.status = StatusUnknown
	m.profile = nil
	m.mu.Unlock()

	if err := m.tokens.Save(token); err != nil {
		m.logger.Warn("Failed to persist session token", zap.Error(err))
	}
	m.notify()
}

// refreshIdentity fetches /users/me for the current token. The response is
// applied only if the token has not changed in the meantime.
func (m *Manager) refreshIdentity(ctx context.Context) error {
	m.mu.Lock()
	gen := m.generation
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return nil
	}

	profile, err := m.client.Me(ctx)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		m.logger.Debug("Discarding identity response for superseded token")
		return nil
	}

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			m.clearLocked()
			m.mu.Unlock()
			m.logger.Warn("Stored token rejected by identity endpoint, session cleared")
			m.notify()
			return err
		}
		m.mu.Unlock()
		m.logger.Warn("Identity fetch failed, session stays unresolved", zap.Error(err))
		return err
	}

	m.profile = profile
	m.status = StatusAuthenticated
	m.mu.Unlock()

	m.logger.Info("Identity resolved", zap.String("email", profile.Email))
	m.notify()
	return nil
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.generation++
	m.status = StatusAnonymous
	m.profile = nil

	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn("Failed to remove persisted token", zap.Error(err))
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{Status: m.status}
	if m.profile != nil {
		profile := *m.profile
		snap.Profile = &profile
		snap.OnboardingRequired = m.status == StatusAuthenticated && !m.profile.HasFullName()
	}
	return snap
}

func (m *Manager) notify() {
	m.mu.Lock()
	snap := m.snapshotLocked()
	callbacks := make([]func(Snapshot), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(snap)
	}
}

// expired checks the token's exp claim locally, without verifying the
// signature, to skip a doomed identity fetch on restore. Opaque tokens
// pass through; the server stays the authority.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
