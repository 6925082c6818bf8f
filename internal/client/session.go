package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Session is the device-persisted authentication state.
// Token is empty exactly when User is nil.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// IsAuthenticated reports whether the session carries an account
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// SessionStore owns the in-memory session, its persisted copy under the
// auth storage key, and the API client's default Authorization header.
// All writers go through Set; readers take snapshots via Current.
type SessionStore struct {
	storage Storage
	api     *APIClient
	logger  *zap.Logger

	mu          sync.RWMutex
	session     Session
	subscribers []func(Session)

	hydrateOnce sync.Once
}

// NewSessionStore creates a SessionStore bound to the given storage and client
func NewSessionStore(storage Storage, api *APIClient, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{storage: storage, api: api, logger: logger}
}

// Hydrate loads the persisted session in the background. It runs at
// most once; callers are not blocked and may observe an empty session
// until the load completes. Missing or unreadable persisted state
// silently yields the empty session with no Authorization header.
func (s *SessionStore) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		go s.hydrate(ctx)
	})
}

// HydrateNow loads the persisted session before returning. Like
// Hydrate it runs at most once; later calls to either are no-ops.
func (s *SessionStore) HydrateNow(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		s.hydrate(ctx)
	})
}

func (s *SessionStore) hydrate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	data, err := s.storage.Read(StorageKeyAuth)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("Persisted session unreadable, starting empty", zap.Error(err))
		}
		return
	}

	var restored Session
	if err := json.Unmarshal(data, &restored); err != nil {
		s.logger.Warn("Persisted session corrupt, starting empty", zap.Error(err))
		return
	}

	s.apply(restored, false)
}

// Set replaces the session wholesale. The Authorization header is
// updated before Set returns, so a request issued immediately after
// carries the new token; the persisted copy is rewritten on every call.
func (s *SessionStore) Set(session Session) error {
	return s.apply(session, true)
}

// Clear resets to the empty session. The Authorization header stays
// present with an empty value.
func (s *SessionStore) Clear() error {
	return s.Set(Session{})
}

func (s *SessionStore) apply(session Session, persist bool) error {
	s.mu.Lock()
	s.session = session
	s.api.SetAuthorization(session.Token)
	subscribers := make([]func(Session), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	var persistErr error
	if persist {
		data, err := json.Marshal(session)
		if err == nil {
			persistErr = s.storage.Write(StorageKeyAuth, data)
		} else {
			persistErr = err
		}
		if persistErr != nil {
			s.logger.Warn("Failed to persist session", zap.Error(persistErr))
		}
	}

	for _, fn := range subscribers {
		fn(session)
	}
	return persistErr
}

// Current returns a snapshot of the session
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the current bearer token, empty when unauthenticated
func (s *SessionStore) Token() string {
	return s.Current().Token
}

// Subscribe registers a callback invoked after every session change,
// including the one performed by hydration.
func (s *SessionStore) Subscribe(fn func(Session)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}
