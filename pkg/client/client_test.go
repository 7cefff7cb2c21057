package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mcastor/tradepost/pkg/domain"
)

func TestWithTimeout(t *testing.T) {
	c := New("http://example.invalid", nil).WithTimeout(5 * time.Second)
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
	}
	c = c.WithTimeout(0)
	if c.httpClient.Timeout != 5*time.Second {
		t.Error("a non-positive timeout must keep the previous value")
	}
}

func TestListComics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/comics/" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("catalog request carried auth header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"data":[` + //nolint:errcheck
			`{"id":1,"title":"Watchmen","price":"499.99","category":"Independent"},` +
			`{"id":2,"title":"Akira","price":"350.00","category":"Manga"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	comics, err := c.ListComics(context.Background())
	if err != nil {
		t.Fatalf("ListComics() error: %v", err)
	}
	if len(comics) != 2 {
		t.Fatalf("got %d comics, want 2", len(comics))
	}
	if comics[0].Title != "Watchmen" || comics[0].Price != 499.99 {
		t.Errorf("comics[0] = %+v, want Watchmen at 499.99", comics[0])
	}
}

func TestGetWishList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"data":[{"id":10,"comic":{"id":5,"title":"Akira","price":"350.00"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("test-token"))
	entries, err := c.GetWishList(context.Background())
	if err != nil {
		t.Fatalf("GetWishList() error: %v", err)
	}
	if len(entries) != 1 || entries[0].ComicID() != 5 {
		t.Fatalf("entries = %+v, want one entry for comic 5", entries)
	}
}

func TestGetWishList_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("bad-token"))
	_, err := c.GetWishList(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, 401) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if !strings.Contains(err.Error(), "not authenticated") {
		t.Errorf("error = %q, want the server message surfaced", err.Error())
	}
}

func TestWishListAddAndRemovePaths(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.AddToWishList(context.Background(), 5); err != nil {
		t.Fatalf("AddToWishList() error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/comics/wishlist/add/5/" {
		t.Errorf("add = %s %s, want POST /api/comics/wishlist/add/5/", gotMethod, gotPath)
	}

	if err := c.RemoveFromWishList(context.Background(), 5); err != nil {
		t.Fatalf("RemoveFromWishList() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/comics/wishlist/delete/5/" {
		t.Errorf("remove = %s %s, want DELETE /api/comics/wishlist/delete/5/", gotMethod, gotPath)
	}
}

// writeTempImage creates a small fake image file for multipart tests.
func writeTempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not-really-a-png"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateComic_MultipartFields(t *testing.T) {
	var form struct {
		title, price, category string
		imageName              string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		form.title = r.FormValue("title")
		form.price = r.FormValue("price")
		form.category = r.FormValue("category")
		if _, hdr, err := r.FormFile("image"); err == nil {
			form.imageName = hdr.Filename
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "comic published"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	msg, err := c.CreateComic(context.Background(), domain.ComicDraft{
		Title:       "Watchmen",
		Publisher:   "DC",
		Edition:     "Absolute",
		Condition:   "New",
		Description: "desc",
		Price:       499.9,
		Category:    "Independent",
		ImagePath:   writeTempImage(t, "cover.png"),
	})
	if err != nil {
		t.Fatalf("CreateComic() error: %v", err)
	}
	if msg != "comic published" {
		t.Errorf("message = %q, want %q", msg, "comic published")
	}
	if form.title != "Watchmen" || form.category != "Independent" {
		t.Errorf("form = %+v, want title/category present", form)
	}
	if form.price != "499.90" {
		t.Errorf("price field = %q, want numeric coercion to %q", form.price, "499.90")
	}
	if form.imageName != "cover.png" {
		t.Errorf("image filename = %q, want cover.png", form.imageName)
	}
}

func TestCreateOffer_OmitsAbsentImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/comics/trade-offer/create/7/" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("offerType") != "service" {
			t.Errorf("offerType = %q, want service", r.FormValue("offerType"))
		}
		if _, _, err := r.FormFile("image"); err == nil {
			t.Error("image part present, want it omitted entirely")
		}
		if _, ok := r.MultipartForm.Value["image"]; ok {
			t.Error("empty image field sent, want it omitted entirely")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "offer sent"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	msg, err := c.CreateOffer(context.Background(), 7, domain.OfferDraft{
		OfferType:   "service",
		Title:       "Restoration work",
		Description: "I restore covers",
	})
	if err != nil {
		t.Fatalf("CreateOffer() error: %v", err)
	}
	if msg != "offer sent" {
		t.Errorf("message = %q, want %q", msg, "offer sent")
	}
}

func TestTradeOffers_SplitsCombinedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{` + //nolint:errcheck
			`"trade_offers_as_seller":[{"id":1,"title":"for your Akira","status":0,"date":"2024-05-13"}],` +
			`"trade_offers_as_trader":[{"id":2,"title":"my offer","status":1},{"id":3,"title":"other","status":2}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	received, sent, err := c.TradeOffers(context.Background())
	if err != nil {
		t.Fatalf("TradeOffers() error: %v", err)
	}
	if len(received) != 1 || received[0].ID != 1 {
		t.Errorf("received = %+v, want one offer with id 1", received)
	}
	// The date field arrives as a bare calendar day.
	if received[0].Date.Year() != 2024 || received[0].Date.Day() != 13 {
		t.Errorf("received date = %v, want 2024-05-13", received[0].Date.Time)
	}
	if len(sent) != 2 || sent[0].Status != domain.OfferAccepted {
		t.Errorf("sent = %+v, want two offers, first accepted", sent)
	}
}

func TestUpdateOfferStatus(t *testing.T) {
	var gotBody map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/comics/trade-offer/update/9/" {
			t.Errorf("got %s %s, want PUT /api/comics/trade-offer/update/9/", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "updated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.UpdateOfferStatus(context.Background(), 9, domain.OfferAccepted); err != nil {
		t.Fatalf("UpdateOfferStatus() error: %v", err)
	}
	if gotBody["status"] != 1 {
		t.Errorf("body status = %d, want 1", gotBody["status"])
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode credentials: %v", err)
		}
		if creds["username"] != "anareyes99" || creds["password"] != "hunter2hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "jwt-token"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	token, err := c.Login(context.Background(), "anareyes99", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token != "jwt-token" {
		t.Errorf("token = %q, want jwt-token", token)
	}

	_, err = c.Login(context.Background(), "anareyes99", "wrong")
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}
	if !strings.Contains(err.Error(), "bad credentials") {
		t.Errorf("error = %q, want server message surfaced", err.Error())
	}
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":{"id":3,"name":"Ana","last_name":"Reyes",` + //nolint:errcheck
			`"username":"anareyes99","email":"ana@example.com","phone":"5512345678",` +
			`"trades_count":4,"rating":"4.50"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.Username != "anareyes99" || user.Rating != 4.5 {
		t.Errorf("user = %+v, want anareyes99 rated 4.5", user)
	}
}

func TestUpdateUser_PartialJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "profile updated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	msg, err := c.UpdateUser(context.Background(), map[string]any{"phone": "5599887766"})
	if err != nil {
		t.Fatalf("UpdateUser() error: %v", err)
	}
	if msg != "profile updated" {
		t.Errorf("message = %q, want %q", msg, "profile updated")
	}
	if len(got) != 1 || got["phone"] != "5599887766" {
		t.Errorf("body = %v, want only the phone field", got)
	}
}

func TestGetComic_ErrorBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "comic not found"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.GetComic(context.Background(), 404)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStatus(err, 404) {
		t.Errorf("IsStatus(err, 404) = false, err = %v", err)
	}
	if !strings.Contains(err.Error(), "comic not found") {
		t.Errorf("error = %q, want message extracted from body", err.Error())
	}
}
