package client

import (
	"sync"
	"time"

	"github.com/dom/reader/internal/auth"
)

// AuthState is what dependent views render from.
type AuthState struct {
	Authenticated bool
	Claims        *auth.Claims
}

// Session owns the stored token. Claims are decoded without verifying the
// signature, so nothing here is fit for authorization decisions.
type Session struct {
	store TokenStore
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[int]chan AuthState
	nextID      int
}

func NewSession(store TokenStore) *Session {
	return &Session{
		store:       store,
		now:         time.Now,
		subscribers: make(map[int]chan AuthState),
	}
}

// Token returns the stored token, or "" when there is none. An expired or
// unreadable token is removed and subscribers are told.
func (s *Session) Token() (string, error) {
	token, _, err := s.current()
	return token, err
}

func (s *Session) State() (AuthState, error) {
	_, claims, err := s.current()
	if err != nil {
		return AuthState{}, err
	}
	if claims == nil {
		return AuthState{}, nil
	}
	return AuthState{Authenticated: true, Claims: claims}, nil
}

// SetToken stores a freshly issued token.
func (s *Session) SetToken(token string) error {
	if err := s.store.Set(TokenKey, token); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Session) Logout() error {
	if err := s.store.Remove(TokenKey); err != nil {
		return err
	}
	s.notify()
	return nil
}

// UserID is the subject of the stored token, or "" when signed out.
func (s *Session) UserID() (string, error) {
	_, claims, err := s.current()
	if err != nil || claims == nil {
		return "", err
	}
	return claims.UserID(), nil
}

func (s *Session) HasRole(role string) (bool, error) {
	_, claims, err := s.current()
	if err != nil || claims == nil {
		return false, err
	}
	return claims.HasRole(role), nil
}

// Subscribe delivers a state after every login, logout and expiry. A slow
// reader only misses intermediate states. Call the returned func to stop.
func (s *Session) Subscribe() (<-chan AuthState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan AuthState, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

func (s *Session) current() (string, *auth.Claims, error) {
	token, err := s.store.Get(TokenKey)
	if err != nil {
		return "", nil, err
	}
	if token == "" {
		return "", nil, nil
	}

	claims, err := auth.ParseUnverified(token)
	if err != nil || auth.IsExpired(claims, s.now()) {
		if err := s.Logout(); err != nil {
			return "", nil, err
		}
		return "", nil, nil
	}

	return token, claims, nil
}

func (s *Session) notify() {
	state, err := s.State()
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		// Replace an unread state with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
