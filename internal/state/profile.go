package state

import (
	"context"
	"sync"

	"github.com/mcastor/tradepost/pkg/client"
	"github.com/mcastor/tradepost/pkg/domain"
)

// ProfileSnapshot is an immutable view of the logged-in user's profile.
type ProfileSnapshot struct {
	User    *domain.User
	Loading bool
	LastErr error
}

// Profile coordinates the logged-in user's profile record.
type Profile struct {
	api  *client.Client
	auth Auth

	mu      sync.RWMutex
	user    *domain.User
	fetched bool
	loading bool
	lastErr error
}

// NewProfile creates an empty profile store.
func NewProfile(api *client.Client, auth Auth) *Profile {
	return &Profile{api: api, auth: auth}
}

// Seed preloads the profile cached at login so the UI has something to
// show before the first refetch completes.
func (p *Profile) Seed(user *domain.User) {
	if user == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *user
	p.user = &cp
}

// FetchUserData loads the profile. Once fetched it is not refetched
// unless force is set, and without a session the store just clears.
func (p *Profile) FetchUserData(ctx context.Context, force bool) error {
	if !p.auth.IsAuthenticated() {
		p.mu.Lock()
		p.user = nil
		p.fetched = false
		p.lastErr = nil
		p.mu.Unlock()
		return nil
	}

	p.mu.Lock()
	if p.fetched && !force {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.mu.Unlock()

	user, err := p.api.CurrentUser(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.lastErr = err
		return err
	}
	p.user = user
	p.fetched = true
	p.lastErr = nil
	return nil
}

// UpdateUserData pushes a partial-field profile edit and refetches the
// full record rather than trusting the partial echo.
func (p *Profile) UpdateUserData(ctx context.Context, fields map[string]any) (string, error) {
	if !p.auth.IsAuthenticated() {
		return "", ErrNotLoggedIn
	}
	msg, err := p.api.UpdateUser(ctx, fields)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return "", err
	}
	if err := p.FetchUserData(ctx, true); err != nil {
		return msg, err
	}
	return msg, nil
}

// UpdateUserImage replaces the profile image and refetches the record.
func (p *Profile) UpdateUserImage(ctx context.Context, imagePath string) (string, error) {
	if !p.auth.IsAuthenticated() {
		return "", ErrNotLoggedIn
	}
	if !domain.ValidImagePath(imagePath) {
		return "", errInvalidImage
	}
	msg, err := p.api.UpdateUserImage(ctx, imagePath)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return "", err
	}
	if err := p.FetchUserData(ctx, true); err != nil {
		return msg, err
	}
	return msg, nil
}

// Reset wipes the profile back to the logged-out state.
func (p *Profile) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	p.fetched = false
	p.lastErr = nil
}

// Snapshot returns a copy of the current profile state.
func (p *Profile) Snapshot() ProfileSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := ProfileSnapshot{Loading: p.loading, LastErr: p.lastErr}
	if p.user != nil {
		cp := *p.user
		snap.User = &cp
	}
	return snap
}
