package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mcastor/tradepost/pkg/domain"
)

// TokenSource resolves the current bearer token. An empty string means the
// request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Client is the TradePost marketplace API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// New creates a new API client. The token source is consulted on every
// request so a session logout takes effect immediately.
func New(baseURL string, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithTimeout overrides the default 30s request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// apiResponse is the envelope every marketplace endpoint wraps its payload in.
type apiResponse struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ListComics fetches the full catalog. No authentication required.
func (c *Client) ListComics(ctx context.Context) ([]domain.Comic, error) {
	var comics []domain.Comic
	if err := c.getData(ctx, "/api/comics/", &comics); err != nil {
		return nil, fmt.Errorf("client.ListComics: %w", err)
	}
	return comics, nil
}

// GetWishList fetches the authenticated user's wishlist entries.
func (c *Client) GetWishList(ctx context.Context) ([]domain.WishListEntry, error) {
	var entries []domain.WishListEntry
	if err := c.getData(ctx, "/api/comics/wishlist/", &entries); err != nil {
		return nil, fmt.Errorf("client.GetWishList: %w", err)
	}
	return entries, nil
}

// AddToWishList favorites a comic by ID.
func (c *Client) AddToWishList(ctx context.Context, comicID int) error {
	path := "/api/comics/wishlist/add/" + strconv.Itoa(comicID) + "/"
	if _, err := c.doJSON(ctx, http.MethodPost, path, nil); err != nil {
		return fmt.Errorf("client.AddToWishList: %w", err)
	}
	return nil
}

// RemoveFromWishList removes a comic from the wishlist by ID.
func (c *Client) RemoveFromWishList(ctx context.Context, comicID int) error {
	path := "/api/comics/wishlist/delete/" + strconv.Itoa(comicID) + "/"
	if _, err := c.doJSON(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("client.RemoveFromWishList: %w", err)
	}
	return nil
}

// GetComic fetches a single comic by ID.
func (c *Client) GetComic(ctx context.Context, comicID int) (*domain.Comic, error) {
	var comic domain.Comic
	if err := c.getData(ctx, "/api/comics/"+strconv.Itoa(comicID), &comic); err != nil {
		return nil, fmt.Errorf("client.GetComic: %w", err)
	}
	return &comic, nil
}

// CreateComic publishes a new listing as a multipart form. Returns the
// server's confirmation message.
func (c *Client) CreateComic(ctx context.Context, draft domain.ComicDraft) (string, error) {
	fields := map[string]string{
		"title":       draft.Title,
		"publisher":   draft.Publisher,
		"edition":     draft.Edition,
		"condition":   draft.Condition,
		"description": draft.Description,
		"price":       strconv.FormatFloat(draft.Price, 'f', 2, 64),
		"category":    draft.Category,
	}
	resp, err := c.doForm(ctx, http.MethodPost, "/api/comics/create/", fields, draft.ImagePath)
	if err != nil {
		return "", fmt.Errorf("client.CreateComic: %w", err)
	}
	return resp.Message, nil
}

// MyComics fetches the catalog scoped to the authenticated user's listings.
func (c *Client) MyComics(ctx context.Context) ([]domain.Comic, error) {
	var comics []domain.Comic
	if err := c.getData(ctx, "/api/comics/my-comics/", &comics); err != nil {
		return nil, fmt.Errorf("client.MyComics: %w", err)
	}
	return comics, nil
}

// UpdateComicData sends a partial-field update for a listing and returns
// the refreshed record.
func (c *Client) UpdateComicData(ctx context.Context, comicID int, fields map[string]any) (*domain.Comic, error) {
	path := "/api/comics/update/" + strconv.Itoa(comicID) + "/"
	resp, err := c.doJSON(ctx, http.MethodPut, path, fields)
	if err != nil {
		return nil, fmt.Errorf("client.UpdateComicData: %w", err)
	}
	var comic domain.Comic
	if err := unmarshalData(resp, &comic); err != nil {
		return nil, fmt.Errorf("client.UpdateComicData: %w", err)
	}
	return &comic, nil
}

// UpdateComicImage replaces a listing's image and returns the refreshed
// record.
func (c *Client) UpdateComicImage(ctx context.Context, comicID int, imagePath string) (*domain.Comic, error) {
	path := "/api/comics/update-image/" + strconv.Itoa(comicID) + "/"
	resp, err := c.doForm(ctx, http.MethodPut, path, nil, imagePath)
	if err != nil {
		return nil, fmt.Errorf("client.UpdateComicImage: %w", err)
	}
	var comic domain.Comic
	if err := unmarshalData(resp, &comic); err != nil {
		return nil, fmt.Errorf("client.UpdateComicImage: %w", err)
	}
	return &comic, nil
}

// --- Trade offer methods ---

// tradeOffersPayload is the combined inbox response: offers received
// against the user's listings and offers the user has sent.
type tradeOffersPayload struct {
	AsSeller []domain.TradeOffer `json:"trade_offers_as_seller"`
	AsTrader []domain.TradeOffer `json:"trade_offers_as_trader"`
}

// TradeOffers fetches the combined offers payload and returns the
// received (as seller) and sent (as trader) lists.
func (c *Client) TradeOffers(ctx context.Context) (received, sent []domain.TradeOffer, err error) {
	var payload tradeOffersPayload
	if err := c.getData(ctx, "/api/comics/trade-offers/", &payload); err != nil {
		return nil, nil, fmt.Errorf("client.TradeOffers: %w", err)
	}
	return payload.AsSeller, payload.AsTrader, nil
}

// TradeOffer fetches a single offer by ID.
func (c *Client) TradeOffer(ctx context.Context, offerID int) (*domain.TradeOffer, error) {
	var offer domain.TradeOffer
	if err := c.getData(ctx, "/api/comics/trade-offer/"+strconv.Itoa(offerID), &offer); err != nil {
		return nil, fmt.Errorf("client.TradeOffer: %w", err)
	}
	return &offer, nil
}

// UpdateOfferStatus performs the pending->accepted or pending->rejected
// transition on an offer the user received.
func (c *Client) UpdateOfferStatus(ctx context.Context, offerID, status int) error {
	path := "/api/comics/trade-offer/update/" + strconv.Itoa(offerID) + "/"
	if _, err := c.doJSON(ctx, http.MethodPut, path, map[string]int{"status": status}); err != nil {
		return fmt.Errorf("client.UpdateOfferStatus: %w", err)
	}
	return nil
}

// CreateOffer submits a trade offer against a comic as a multipart form.
// The image part is omitted entirely when the draft has none.
func (c *Client) CreateOffer(ctx context.Context, comicID int, draft domain.OfferDraft) (string, error) {
	fields := map[string]string{
		"offerType":   draft.OfferType,
		"title":       draft.Title,
		"description": draft.Description,
	}
	path := "/api/comics/trade-offer/create/" + strconv.Itoa(comicID) + "/"
	resp, err := c.doForm(ctx, http.MethodPost, path, fields, draft.ImagePath)
	if err != nil {
		return "", fmt.Errorf("client.CreateOffer: %w", err)
	}
	return resp.Message, nil
}

// --- User methods ---

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/user/login/", body)
	if err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	var result struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(resp.raw, &result); err != nil {
		return "", fmt.Errorf("client.Login: decode response: %w", err)
	}
	if result.Access == "" {
		return "", fmt.Errorf("client.Login: response carried no access token")
	}
	return result.Access, nil
}

// CreateUser registers a new account. Returns the server's confirmation
// message.
func (c *Client) CreateUser(ctx context.Context, draft domain.SignUpDraft) (string, error) {
	body := map[string]string{
		"name":      draft.Name,
		"last_name": draft.LastName,
		"email":     draft.Email,
		"password":  draft.Password,
		"phone":     draft.Phone,
		"username":  draft.Username,
	}
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/user/create-user/", body)
	if err != nil {
		return "", fmt.Errorf("client.CreateUser: %w", err)
	}
	return resp.Message, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.getData(ctx, "/api/user/", &user); err != nil {
		return nil, fmt.Errorf("client.CurrentUser: %w", err)
	}
	return &user, nil
}

// UpdateUser sends a JSON partial update of the profile. Returns the
// server's confirmation message; callers refetch the full profile rather
// than trusting the partial echo.
func (c *Client) UpdateUser(ctx context.Context, fields map[string]any) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPut, "/api/user/update-user/", fields)
	if err != nil {
		return "", fmt.Errorf("client.UpdateUser: %w", err)
	}
	return resp.Message, nil
}

// UpdateUserImage replaces the profile image.
func (c *Client) UpdateUserImage(ctx context.Context, imagePath string) (string, error) {
	resp, err := c.doForm(ctx, http.MethodPut, "/api/user/update-image/", nil, imagePath)
	if err != nil {
		return "", fmt.Errorf("client.UpdateUserImage: %w", err)
	}
	return resp.Message, nil
}

// --- request plumbing ---

// response pairs the decoded envelope with the raw body for the few
// endpoints (login) that reply outside the envelope.
type response struct {
	apiResponse
	raw []byte
}

func (c *Client) getData(ctx context.Context, path string, out any) error {
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return unmarshalData(resp, out)
}

// unmarshalData decodes the envelope's data field into out. Responses
// without an envelope decode the whole body instead.
func unmarshalData(resp *response, out any) error {
	src := []byte(resp.Data)
	if len(src) == 0 {
		src = resp.raw
	}
	if len(src) == 0 {
		return nil
	}
	if err := json.Unmarshal(src, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*response, error) {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, contentType, reqBody)
}

// doForm issues a multipart/form-data request. The file part is appended
// only when filePath is non-empty, so optional images are omitted rather
// than sent blank.
func (c *Client) doForm(ctx context.Context, method, path string, fields map[string]string, filePath string) (*response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field %q: %w", key, err)
		}
	}

	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only file

		part, err := w.CreateFormFile("image", filepath.Base(filePath))
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, fmt.Errorf("copy image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}
	return c.doRequest(ctx, method, path, w.FormDataContentType(), &buf)
}

func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max body
	if resp.StatusCode >= 400 {
		if readErr != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}

	out := &response{raw: respBody}
	if len(respBody) > 0 {
		// Non-JSON 2xx bodies are tolerated; raw stays available.
		_ = json.Unmarshal(respBody, &out.apiResponse)
	}
	return out, nil
}
