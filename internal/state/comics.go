// Package state holds the client-side view state shared between the
// network commands and the UI. Each store is mutex guarded: fetch
// commands write, the UI reads immutable snapshots.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/mcastor/tradepost/pkg/client"
	"github.com/mcastor/tradepost/pkg/domain"
)

// Auth reports whether a login token is present. *session.Session
// satisfies it.
type Auth interface {
	IsAuthenticated() bool
}

// ErrNotLoggedIn is returned by operations that require a session.
var ErrNotLoggedIn = errors.New("not logged in")

var errInvalidImage = errors.New("image must be a JPG, JPEG, PNG or GIF file")

// Catalog view modes.
const (
	ViewAll  = "all"
	ViewMine = "mine"
)

// ComicsSnapshot is an immutable view of the catalog state.
type ComicsSnapshot struct {
	Catalog  []domain.Comic
	Mine     []domain.Comic
	Wishlist []domain.WishListEntry
	Current  *domain.Comic
	ViewMode string
	Loading  bool
	LastErr  error

	wishlistIDs map[int]struct{}
}

// InWishlist reports membership of a comic in the user's wishlist.
func (s ComicsSnapshot) InWishlist(comicID int) bool {
	_, ok := s.wishlistIDs[comicID]
	return ok
}

// Comics coordinates the catalog, the user's own listings, the wishlist
// and the per-comic detail cache.
type Comics struct {
	api  *client.Client
	auth Auth

	mu       sync.RWMutex
	catalog  []domain.Comic
	mine     []domain.Comic
	entries  []domain.WishListEntry
	wishlist map[int]struct{}
	cache    map[int]domain.Comic
	inflight map[int]bool
	current  *domain.Comic
	viewMode string
	loading  bool
	wlBusy   bool
	lastErr  error
}

// NewComics creates an empty catalog store.
func NewComics(api *client.Client, auth Auth) *Comics {
	return &Comics{
		api:      api,
		auth:     auth,
		wishlist: make(map[int]struct{}),
		cache:    make(map[int]domain.Comic),
		inflight: make(map[int]bool),
		viewMode: ViewAll,
	}
}

// FetchInitialData loads the catalog and, when a session exists, the
// wishlist, concurrently. The two land together or not at all: any
// failure resets both to empty so the UI never shows a half-loaded mix.
func (c *Comics) FetchInitialData(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		comics  []domain.Comic
		entries []domain.WishListEntry
		catErr  error
		wishErr error
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		comics, catErr = c.api.ListComics(ctx)
	}()
	if c.auth.IsAuthenticated() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, wishErr = c.api.GetWishList(ctx)
		}()
	}
	wg.Wait()

	err := errors.Join(catErr, wishErr)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.catalog = nil
		c.setWishlistLocked(nil)
		c.lastErr = err
		return err
	}
	c.catalog = comics
	c.setWishlistLocked(entries)
	for _, comic := range comics {
		c.cache[comic.ID] = comic
	}
	c.lastErr = nil
	return nil
}

// FetchComicByID resolves a comic for the detail view, serving from the
// cache when possible. A concurrent fetch for the same ID is not
// duplicated; the second caller gets nil and waits for the snapshot to
// fill in.
func (c *Comics) FetchComicByID(ctx context.Context, comicID int) (*domain.Comic, error) {
	c.mu.Lock()
	if comic, ok := c.cache[comicID]; ok {
		cp := comic
		c.current = &cp
		c.mu.Unlock()
		return &cp, nil
	}
	if c.inflight[comicID] {
		c.mu.Unlock()
		return nil, nil
	}
	c.inflight[comicID] = true
	c.mu.Unlock()

	comic, err := c.api.GetComic(ctx, comicID)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, comicID)
	if err != nil {
		// A failed fetch clears the selection; the detail view must
		// not keep showing the previously viewed comic.
		c.current = nil
		c.lastErr = err
		return nil, err
	}
	c.cache[comic.ID] = *comic
	cp := *comic
	c.current = &cp
	return &cp, nil
}

// Invalidate drops a comic from the detail cache so the next lookup
// refetches it.
func (c *Comics) Invalidate(comicID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, comicID)
}

// CreateComic publishes a listing. The draft is validated and the
// session checked before any request goes out.
func (c *Comics) CreateComic(ctx context.Context, draft domain.ComicDraft) (string, error) {
	if !c.auth.IsAuthenticated() {
		return "", ErrNotLoggedIn
	}
	if problem := draft.Validate(); problem != "" {
		return "", errors.New(problem)
	}
	msg, err := c.api.CreateComic(ctx, draft)
	if err != nil {
		c.setErr(err)
		return "", err
	}
	return msg, nil
}

// FetchMyComics loads the user's own listings. A failure resets the
// list to empty rather than leaving stale entries on screen.
func (c *Comics) FetchMyComics(ctx context.Context) error {
	if !c.auth.IsAuthenticated() {
		c.mu.Lock()
		c.mine = nil
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	comics, err := c.api.MyComics(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.mine = nil
		c.lastErr = err
		return err
	}
	c.mine = comics
	for _, comic := range comics {
		c.cache[comic.ID] = comic
	}
	c.lastErr = nil
	return nil
}

// SetViewMode switches the catalog between everyone's listings and the
// user's own.
func (c *Comics) SetViewMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == ViewMine {
		c.viewMode = ViewMine
	} else {
		c.viewMode = ViewAll
	}
}

// UpdateComicData pushes a partial-field edit of an owned listing and
// replaces the cached record with the server's refreshed copy.
func (c *Comics) UpdateComicData(ctx context.Context, comicID int, fields map[string]any) (*domain.Comic, error) {
	comic, err := c.api.UpdateComicData(ctx, comicID, fields)
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	c.replaceComic(*comic)
	return comic, nil
}

// UpdateComicImage replaces an owned listing's image and refreshes the
// cached record.
func (c *Comics) UpdateComicImage(ctx context.Context, comicID int, imagePath string) (*domain.Comic, error) {
	if !domain.ValidImagePath(imagePath) {
		return nil, errInvalidImage
	}
	comic, err := c.api.UpdateComicImage(ctx, comicID, imagePath)
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	c.replaceComic(*comic)
	return comic, nil
}

// AddToWishList favorites a comic. While one wishlist mutation is in
// flight further toggles are ignored, so mashing the key cannot queue
// contradictory requests.
func (c *Comics) AddToWishList(ctx context.Context, comicID int) error {
	if !c.auth.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	if !c.beginWishlistOp() {
		return nil
	}
	defer c.endWishlistOp()

	if err := c.api.AddToWishList(ctx, comicID); err != nil {
		c.setErr(err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.wishlist[comicID]; ok {
		return nil
	}
	c.wishlist[comicID] = struct{}{}
	entry := domain.WishListEntry{ID: comicID}
	if comic, ok := c.cache[comicID]; ok {
		cp := comic
		entry.Comic = &cp
	}
	c.entries = append(c.entries, entry)
	return nil
}

// RemoveFromWishList drops a comic from the wishlist. Subject to the
// same single-mutation-in-flight rule as AddToWishList.
func (c *Comics) RemoveFromWishList(ctx context.Context, comicID int) error {
	if !c.auth.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	if !c.beginWishlistOp() {
		return nil
	}
	defer c.endWishlistOp()

	if err := c.api.RemoveFromWishList(ctx, comicID); err != nil {
		c.setErr(err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.wishlist, comicID)
	kept := c.entries[:0]
	for _, entry := range c.entries {
		if entry.ComicID() != comicID {
			kept = append(kept, entry)
		}
	}
	c.entries = kept
	return nil
}

// RefreshWishList refetches the wishlist entries from the server.
func (c *Comics) RefreshWishList(ctx context.Context) error {
	if !c.auth.IsAuthenticated() {
		c.mu.Lock()
		c.setWishlistLocked(nil)
		c.mu.Unlock()
		return nil
	}
	entries, err := c.api.GetWishList(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		return err
	}
	c.setWishlistLocked(entries)
	return nil
}

// ClearCurrent drops the detail selection when the detail view closes.
func (c *Comics) ClearCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Reset wipes everything back to the logged-out state: empty wishlist,
// no own listings, catalog view back to all.
func (c *Comics) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mine = nil
	c.setWishlistLocked(nil)
	c.current = nil
	c.viewMode = ViewAll
	c.lastErr = nil
}

// Snapshot returns a copy of the current catalog state.
func (c *Comics) Snapshot() ComicsSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := ComicsSnapshot{
		Catalog:     cloneComics(c.catalog),
		Mine:        cloneComics(c.mine),
		Wishlist:    cloneEntries(c.entries),
		ViewMode:    c.viewMode,
		Loading:     c.loading,
		LastErr:     c.lastErr,
		wishlistIDs: make(map[int]struct{}, len(c.wishlist)),
	}
	for id := range c.wishlist {
		snap.wishlistIDs[id] = struct{}{}
	}
	if c.current != nil {
		cp := *c.current
		snap.Current = &cp
	}
	return snap
}

// setWishlistLocked replaces the entries and rebuilds the membership
// set. Entries that resolve to no comic ID are dropped.
func (c *Comics) setWishlistLocked(entries []domain.WishListEntry) {
	c.entries = nil
	c.wishlist = make(map[int]struct{}, len(entries))
	for _, entry := range entries {
		id := entry.ComicID()
		if id == 0 {
			continue
		}
		c.entries = append(c.entries, entry)
		c.wishlist[id] = struct{}{}
	}
}

func (c *Comics) replaceComic(comic domain.Comic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[comic.ID] = comic
	for i := range c.catalog {
		if c.catalog[i].ID == comic.ID {
			c.catalog[i] = comic
		}
	}
	for i := range c.mine {
		if c.mine[i].ID == comic.ID {
			c.mine[i] = comic
		}
	}
	if c.current != nil && c.current.ID == comic.ID {
		cp := comic
		c.current = &cp
	}
	c.lastErr = nil
}

func (c *Comics) beginWishlistOp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wlBusy {
		return false
	}
	c.wlBusy = true
	return true
}

func (c *Comics) endWishlistOp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wlBusy = false
}

func (c *Comics) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

func cloneComics(comics []domain.Comic) []domain.Comic {
	if len(comics) == 0 {
		return nil
	}
	dup := make([]domain.Comic, len(comics))
	copy(dup, comics)
	return dup
}

func cloneEntries(entries []domain.WishListEntry) []domain.WishListEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]domain.WishListEntry, len(entries))
	copy(dup, entries)
	return dup
}
