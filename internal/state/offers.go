package state

import (
	"context"
	"errors"
	"sync"

	"github.com/mcastor/tradepost/pkg/client"
	"github.com/mcastor/tradepost/pkg/domain"
)

// OffersSnapshot is an immutable view of the trade offer inbox.
type OffersSnapshot struct {
	Received []domain.TradeOffer
	Sent     []domain.TradeOffer
	Current  *domain.TradeOffer
	Loading  bool
	LastErr  error
}

// PendingReceived returns the received offers still awaiting a decision.
func (s OffersSnapshot) PendingReceived() []domain.TradeOffer {
	var pending []domain.TradeOffer
	for _, offer := range s.Received {
		if offer.Pending() {
			pending = append(pending, offer)
		}
	}
	return pending
}

// Offers coordinates the trade offer inbox: offers received against the
// user's listings and offers the user has sent.
type Offers struct {
	api  *client.Client
	auth Auth

	mu       sync.RWMutex
	received []domain.TradeOffer
	sent     []domain.TradeOffer
	current  *domain.TradeOffer
	loading  bool
	lastErr  error
}

// NewOffers creates an empty offers store.
func NewOffers(api *client.Client, auth Auth) *Offers {
	return &Offers{api: api, auth: auth}
}

// FetchOffersData loads both offer lists. Without a session the lists
// are cleared and no request is made.
func (o *Offers) FetchOffersData(ctx context.Context) error {
	if !o.auth.IsAuthenticated() {
		o.mu.Lock()
		o.received, o.sent = nil, nil
		o.lastErr = nil
		o.mu.Unlock()
		return nil
	}

	o.mu.Lock()
	o.loading = true
	o.mu.Unlock()

	received, sent, err := o.api.TradeOffers(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false
	if err != nil {
		o.received, o.sent = nil, nil
		o.lastErr = err
		return err
	}
	o.received, o.sent = received, sent
	o.lastErr = nil
	return nil
}

// FetchOfferByID loads a single offer for the detail view.
func (o *Offers) FetchOfferByID(ctx context.Context, offerID int) (*domain.TradeOffer, error) {
	offer, err := o.api.TradeOffer(ctx, offerID)
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.lastErr = err
		return nil, err
	}
	cp := *offer
	o.current = &cp
	o.lastErr = nil
	return offer, nil
}

// UpdateOfferStatus accepts or rejects a pending received offer, then
// refetches both lists so the inbox reflects the decision.
func (o *Offers) UpdateOfferStatus(ctx context.Context, offerID, status int) error {
	if !o.auth.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	if !domain.ValidOfferStatus(status) {
		return errors.New("offer status must be accepted or rejected")
	}
	if err := o.api.UpdateOfferStatus(ctx, offerID, status); err != nil {
		o.mu.Lock()
		o.lastErr = err
		o.mu.Unlock()
		return err
	}
	return o.FetchOffersData(ctx)
}

// CreateOffer submits a trade offer against someone else's listing. The
// draft is validated and the session checked before any request.
func (o *Offers) CreateOffer(ctx context.Context, comicID int, draft domain.OfferDraft) (string, error) {
	if !o.auth.IsAuthenticated() {
		return "", ErrNotLoggedIn
	}
	if problem := draft.Validate(); problem != "" {
		return "", errors.New(problem)
	}
	msg, err := o.api.CreateOffer(ctx, comicID, draft)
	if err != nil {
		o.mu.Lock()
		o.lastErr = err
		o.mu.Unlock()
		return "", err
	}
	return msg, nil
}

// ClearCurrent drops the detail selection when the detail view closes.
func (o *Offers) ClearCurrent() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

// Reset wipes the inbox back to the logged-out state.
func (o *Offers) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.received, o.sent = nil, nil
	o.current = nil
	o.lastErr = nil
}

// Snapshot returns a copy of the current inbox state.
func (o *Offers) Snapshot() OffersSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := OffersSnapshot{
		Received: cloneOffers(o.received),
		Sent:     cloneOffers(o.sent),
		Loading:  o.loading,
		LastErr:  o.lastErr,
	}
	if o.current != nil {
		cp := *o.current
		snap.Current = &cp
	}
	return snap
}

func cloneOffers(offers []domain.TradeOffer) []domain.TradeOffer {
	if len(offers) == 0 {
		return nil
	}
	dup := make([]domain.TradeOffer, len(offers))
	copy(dup, offers)
	return dup
}
