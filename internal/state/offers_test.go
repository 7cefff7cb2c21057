package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcastor/tradepost/pkg/client"
	"github.com/mcastor/tradepost/pkg/domain"
)

// offersServer serves a mutable inbox so a status update is visible on
// the refetch that follows it.
type offersServer struct {
	mu       sync.Mutex
	received []domain.TradeOffer
	sent     []domain.TradeOffer
}

func (s *offersServer) install(mux *countingMux) {
	mux.handle("/api/comics/trade-offers/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, map[string]any{
			"trade_offers_as_seller": s.received,
			"trade_offers_as_trader": s.sent,
		})
	})
	mux.handle("/api/comics/trade-offer/update/1/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status int `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		for i := range s.received {
			if s.received[i].ID == 1 {
				s.received[i].Status = body.Status
			}
		}
		s.mu.Unlock()
		writeData(w, nil)
	})
}

func TestFetchOffersDataWithoutSessionClears(t *testing.T) {
	mux := newCountingMux()
	mux.handle("/api/comics/trade-offers/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("inbox fetched without a session")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(false))
	require.NoError(t, offers.FetchOffersData(context.Background()))

	snap := offers.Snapshot()
	assert.Empty(t, snap.Received)
	assert.Empty(t, snap.Sent)
	assert.Equal(t, 0, mux.count("/api/comics/trade-offers/"))
}

func TestFetchOffersDataSplitsLists(t *testing.T) {
	server := &offersServer{
		received: []domain.TradeOffer{
			{ID: 1, OfferType: "product", Title: "Trade for Saga", Status: domain.OfferPending},
			{ID: 2, OfferType: "service", Title: "Restoration work", Status: domain.OfferRejected},
		},
		sent: []domain.TradeOffer{
			{ID: 3, OfferType: "product", Title: "My offer", Status: domain.OfferPending},
		},
	}
	mux := newCountingMux()
	server.install(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(true))
	require.NoError(t, offers.FetchOffersData(context.Background()))

	snap := offers.Snapshot()
	require.Len(t, snap.Received, 2)
	require.Len(t, snap.Sent, 1)

	pending := snap.PendingReceived()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)
}

func TestUpdateOfferStatusRefetchesInbox(t *testing.T) {
	server := &offersServer{
		received: []domain.TradeOffer{
			{ID: 1, OfferType: "product", Title: "Trade for Saga", Status: domain.OfferPending},
		},
	}
	mux := newCountingMux()
	server.install(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(true))
	require.NoError(t, offers.FetchOffersData(context.Background()))

	require.NoError(t, offers.UpdateOfferStatus(context.Background(), 1, domain.OfferAccepted))
	assert.Equal(t, 1, mux.count("/api/comics/trade-offer/update/1/"))
	assert.Equal(t, 2, mux.count("/api/comics/trade-offers/"), "decision must trigger a refetch")

	snap := offers.Snapshot()
	require.Len(t, snap.Received, 1)
	assert.Equal(t, domain.OfferAccepted, snap.Received[0].Status)
	assert.Empty(t, snap.PendingReceived())
}

func TestUpdateOfferStatusRejectsInvalidTransition(t *testing.T) {
	mux := newCountingMux()
	mux.handle("/api/comics/trade-offer/update/1/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for an invalid status")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(true))
	require.Error(t, offers.UpdateOfferStatus(context.Background(), 1, domain.OfferPending))
	require.Error(t, offers.UpdateOfferStatus(context.Background(), 1, 3))
	assert.Equal(t, 0, mux.count("/api/comics/trade-offer/update/1/"))
}

func TestCreateOfferValidatesBeforeRequest(t *testing.T) {
	mux := newCountingMux()
	mux.handle("/api/comics/trade-offer/create/5/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for an invalid draft")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(true))
	_, err := offers.CreateOffer(context.Background(), 5, domain.OfferDraft{
		OfferType: "barter", Title: "x", Description: "y",
	})
	require.EqualError(t, err, "offer type is required")

	loggedOut := NewOffers(client.New(srv.URL, nil), fakeAuth(false))
	_, err = loggedOut.CreateOffer(context.Background(), 5, domain.OfferDraft{
		OfferType: "product", Title: "x", Description: "y",
	})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, 0, mux.count("/api/comics/trade-offer/create/5/"))
}

func TestOffersResetClearsInbox(t *testing.T) {
	server := &offersServer{
		received: []domain.TradeOffer{{ID: 1, Status: domain.OfferPending}},
	}
	mux := newCountingMux()
	server.install(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	offers := NewOffers(client.New(srv.URL, nil), fakeAuth(true))
	require.NoError(t, offers.FetchOffersData(context.Background()))
	require.Len(t, offers.Snapshot().Received, 1)

	offers.Reset()
	snap := offers.Snapshot()
	assert.Empty(t, snap.Received)
	assert.Empty(t, snap.Sent)
	assert.Nil(t, snap.Current)
}
