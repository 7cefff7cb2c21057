// Package session holds the persisted login session: the bearer token,
// the cached profile, and the notification markers. Everything lives as
// files under one directory and is cleared together on logout. The
// Session value is passed explicitly to whatever needs it; there is no
// ambient global.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/mcastor/tradepost/pkg/domain"
)

const (
	tokenFile         = "token"
	profileFile       = "profile.json"
	notificationsFile = "notifications.toml"
)

// Session is the persisted authentication state. It implements
// client.TokenSource so a logout takes effect on the next request.
type Session struct {
	dir string

	mu    sync.RWMutex
	token string
}

// Open loads the session from dir, creating the directory if needed. A
// missing token file means a logged-out session, not an error.
func Open(dir string) (*Session, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session.Open: create dir: %w", err)
	}
	s := &Session{dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, tokenFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("session.Open: read token: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a bearer token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login persists the token and flips the session to authenticated.
// Callers pair this with a profile fetch; Login itself makes no network
// call.
func (s *Session) Login(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("session.Login: save token: %w", err)
	}
	s.token = token
	return nil
}

// Logout removes the token, the cached profile, and the notification
// markers together, and flips the session to unauthenticated.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, name := range []string{tokenFile, profileFile, notificationsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("session.Logout: remove %s: %w", name, err)
			}
		}
	}
	s.token = ""
	return firstErr
}

// CacheProfile stores the profile fetched as a side effect of logging in.
func (s *Session) CacheProfile(u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session.CacheProfile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, profileFile), data, 0o600); err != nil {
		return fmt.Errorf("session.CacheProfile: %w", err)
	}
	return nil
}

// CachedProfile returns the profile stored at login, if any.
func (s *Session) CachedProfile() (*domain.User, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, profileFile))
	if err != nil {
		return nil, false
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

// Notifications are the per-install markers for offers the user has
// already seen in the inbox. The device ID namespaces the markers so a
// shared account on two machines keeps independent badges.
type Notifications struct {
	DeviceID   string `toml:"device_id"`
	SeenOffers []int  `toml:"seen_offers"`
}

// Seen reports whether the offer has been marked seen.
func (n Notifications) Seen(offerID int) bool {
	for _, id := range n.SeenOffers {
		if id == offerID {
			return true
		}
	}
	return false
}

// MarkSeen records the offer as seen. Re-marking is a no-op.
func (n *Notifications) MarkSeen(offerID int) {
	if n.Seen(offerID) {
		return
	}
	n.SeenOffers = append(n.SeenOffers, offerID)
}

// Notifications loads the markers, minting a device ID on first use.
func (s *Session) Notifications() (Notifications, error) {
	var n Notifications
	data, err := os.ReadFile(filepath.Join(s.dir, notificationsFile))
	if err == nil {
		if err := toml.Unmarshal(data, &n); err != nil {
			// A corrupt file resets the markers rather than wedging the UI.
			n = Notifications{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Notifications{}, fmt.Errorf("session.Notifications: %w", err)
	}
	if n.DeviceID == "" {
		n.DeviceID = uuid.NewString()
	}
	return n, nil
}

// SaveNotifications persists the markers.
func (s *Session) SaveNotifications(n Notifications) error {
	data, err := toml.Marshal(n)
	if err != nil {
		return fmt.Errorf("session.SaveNotifications: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, notificationsFile), data, 0o600); err != nil {
		return fmt.Errorf("session.SaveNotifications: %w", err)
	}
	return nil
}
