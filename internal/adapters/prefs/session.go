package prefs

import (
	"github.com/quoteapp/quoted/internal/domain"
)

// Preference keys for the persisted session. The names match the mobile
// app's defaults store, so a migrated preference file restores cleanly.
const (
	keyStayLoggedIn = "stayLoggedIn"
	keyUserEmail    = "userEmail"
	keyUserName     = "userName"
	keyUserID       = "userId"
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
)

// sessionKeys are the fields erased together. The stay-logged-in flag
// itself survives erasure; only the identity fields go.
var sessionKeys = []string{
	keyUserEmail,
	keyUserName,
	keyUserID,
	keyAccessToken,
	keyRefreshToken,
}

// StayLoggedIn reports the persisted value of the preference.
// Implements ports.SessionStore.
func (s *Store) StayLoggedIn() bool {
	return s.getBool(keyStayLoggedIn)
}

// SetStayLoggedIn records the preference. Disabling it erases every
// persisted session field in the same write.
// Implements ports.SessionStore.
func (s *Store) SetStayLoggedIn(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[keyStayLoggedIn] = enabled

	if !enabled {
		for _, k := range sessionKeys {
			delete(s.values, k)
		}
	}

	return s.save()
}

// SaveSession persists the session fields. A no-op unless the
// stay-logged-in preference is currently enabled.
// Implements ports.SessionStore.
func (s *Store) SaveSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on, _ := s.values[keyStayLoggedIn].(bool); !on {
		return nil
	}

	s.values[keyUserEmail] = session.Email
	s.values[keyUserName] = session.Name
	s.values[keyUserID] = session.UserID
	s.values[keyAccessToken] = session.AccessToken

	if session.RefreshToken != "" {
		s.values[keyRefreshToken] = session.RefreshToken
	}

	return s.save()
}

// RestoreSession returns the persisted session only when the stay-logged-in
// preference is enabled and every identity field is present. Restoration
// fails closed: a partial session restores nothing.
// Implements ports.SessionStore.
func (s *Store) RestoreSession() (*domain.Session, bool) {
	if !s.StayLoggedIn() {
		return nil, false
	}

	session := &domain.Session{
		UserID:       s.getString(keyUserID),
		Email:        s.getString(keyUserEmail),
		Name:         s.getString(keyUserName),
		AccessToken:  s.getString(keyAccessToken),
		RefreshToken: s.getString(keyRefreshToken),
	}

	if session.UserID == "" || session.Email == "" || session.Name == "" || session.AccessToken == "" {
		return nil, false
	}

	return session, true
}

// ClearSession removes every persisted session field unconditionally.
// Implements ports.SessionStore.
func (s *Store) ClearSession() error {
	return s.remove(sessionKeys...)
}
