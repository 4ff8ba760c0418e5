package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides typed access to the marketplace API.
// All paths are resolved relative to the base URL given to NewClient.
// The client holds no state between calls and is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    Doer
}

// NewClient creates a new API client.
//
// Parameters:
//   - baseURL: absolute URL of the API stage, e.g. "https://api.example.com/prod/"
//   - doer: HTTP executor; nil uses http.DefaultClient
//
// Returns an error if baseURL is empty or not absolute.
func NewClient(baseURL string, doer Doer) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if doer == nil {
		doer = http.DefaultClient
	}

	return &Client{baseURL: u, http: doer}, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListItems returns every listing with its seller's username.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "Items", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListSellerItems returns the listings of one seller.
func (c *Client) ListSellerItems(ctx context.Context, sellerID string) ([]Item, error) {
	var out struct {
		Items []Item `json:"items"`
		Count int    `json:"count"`
	}
	q := url.Values{"sellerID": {sellerID}}
	if err := c.do(ctx, http.MethodGet, "Items/seller", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListAllItems returns the administrator's view of every listing.
func (c *Client) ListAllItems(ctx context.Context) ([]AdminItem, error) {
	var items []AdminItem
	if err := c.do(ctx, http.MethodGet, "Items/all", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem submits a new listing.
func (c *Client) CreateItem(ctx context.Context, item *NewItem) error {
	return c.do(ctx, http.MethodPost, "Items", nil, item, nil)
}

// ToggleItemActive flips an item's active flag.
func (c *Client) ToggleItemActive(ctx context.Context, itemID string) (*ToggleResult, error) {
	var out ToggleResult
	body := map[string]string{"itemID": itemID}
	if err := c.do(ctx, http.MethodPut, "Items/isActive_switch", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile returns a user's profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	q := url.Values{"userID": {userID}}
	if err := c.do(ctx, http.MethodGet, "Users/byid", q, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile updates the given attributes of a user's profile.
func (c *Client) UpdateProfile(ctx context.Context, userID string, attrs ProfileAttributes) error {
	q := url.Values{"userID": {userID}}
	body := struct {
		Attributes ProfileAttributes `json:"attributes"`
	}{Attributes: attrs}
	return c.do(ctx, http.MethodPut, "Users", q, body, nil)
}

// ListUsers returns the administrator's view of every user.
func (c *Client) ListUsers(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.do(ctx, http.MethodGet, "Users/all", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// IsAdmin reports whether a user belongs to the administrators group.
func (c *Client) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var out struct {
		IsAdmin Flag `json:"isAdmin"`
	}
	q := url.Values{"userID": {userID}}
	if err := c.do(ctx, http.MethodGet, "Users/isadmin", q, nil, &out); err != nil {
		return false, err
	}
	return bool(out.IsAdmin), nil
}

// AdminStatistics returns the dashboard summary.
func (c *Client) AdminStatistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	if err := c.do(ctx, http.MethodGet, "Users/admin_statistics", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToggleUserActive flips a user's active flag.
func (c *Client) ToggleUserActive(ctx context.Context, userID string) (*ToggleResult, error) {
	var out ToggleResult
	body := map[string]string{"userID": userID}
	if err := c.do(ctx, http.MethodPut, "Users/isActive_switch", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMail hands a notification to the mail endpoint.
func (c *Client) SendMail(ctx context.Context, m *Mail) error {
	return c.do(ctx, http.MethodPost, "Users/mail", nil, m, nil)
}

// GetUserEmail returns a user's email address.
func (c *Client) GetUserEmail(ctx context.Context, userID string) (string, error) {
	q := url.Values{"userID": {userID}}
	raw, err := c.fetch(ctx, http.MethodGet, "Users/get_email", q, nil)
	if err != nil {
		return "", err
	}

	payload, err := UnwrapEnvelope(raw)
	if err != nil {
		return "", withPath(err, "Users/get_email")
	}

	// Either {"email": "..."} or the bare address
	var out struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &out); err == nil && out.Email != "" {
		return out.Email, nil
	}
	var email string
	if err := json.Unmarshal(payload, &email); err == nil && email != "" {
		return email, nil
	}
	return "", &MalformedResponseError{Path: "Users/get_email", Err: fmt.Errorf("no email in response")}
}

// PendingOffers returns the offers waiting for sellerID's decision.
func (c *Client) PendingOffers(ctx context.Context, sellerID string) ([]PendingOffer, error) {
	var offers []PendingOffer
	q := url.Values{"userID": {sellerID}}
	if err := c.do(ctx, http.MethodGet, "Users/pending_transactions", q, nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// AcceptedTrades returns the accepted offers where userID is buyer or seller.
func (c *Client) AcceptedTrades(ctx context.Context, userID string) ([]Trade, error) {
	var trades []Trade
	q := url.Values{"userID": {userID}}
	if err := c.do(ctx, http.MethodGet, "Users/byid_accepted_transactions", q, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// CreateTransaction submits an offer. A duplicate (buyer, item) pair is
// reported through CreateOfferResult.TransactionExists, not as an error.
func (c *Client) CreateTransaction(ctx context.Context, t *Transaction) (*CreateOfferResult, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	var out CreateOfferResult
	if err := c.do(ctx, http.MethodPost, "transactions", nil, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuyerPendingItemIDs returns the IDs of items on which buyerID has a pending offer.
func (c *Client) BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error) {
	var out struct {
		ItemIDs []string `json:"itemIDs"`
	}
	q := url.Values{"buyerID": {buyerID}}
	if err := c.do(ctx, http.MethodGet, "transactions/buyer_pending", q, nil, &out); err != nil {
		return nil, err
	}
	return out.ItemIDs, nil
}

// UpdateTransactionStatus records the seller's decision on an offer.
func (c *Client) UpdateTransactionStatus(ctx context.Context, transactionID string, status Status) error {
	if !StatusPending.CanTransition(status) {
		return fmt.Errorf("invalid decision %q: must be accepted or rejected", status)
	}
	body := struct {
		TransactionID string `json:"transactionID"`
		Status        Status `json:"status"`
	}{transactionID, status}
	return c.do(ctx, http.MethodPut, "transactions/byid_update_status", nil, body, nil)
}

// UploadImage stores an image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, http.MethodPost, "Images", nil, img, &out); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", &MalformedResponseError{Path: "Images", Err: fmt.Errorf("no imageUrl in response")}
	}
	return out.ImageURL, nil
}

// do performs a request and decodes the payload into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.fetch(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if out == nil {
		// Still surface envelope-level failures
		if _, err := UnwrapEnvelope(raw); err != nil && !IsMalformed(err) {
			return withPath(err, path)
		}
		return nil
	}

	if err := decodePayload(raw, out); err != nil {
		return withPath(err, path)
	}
	return nil
}

// fetch performs a request and returns the raw body of a 2xx answer.
func (c *Client) fetch(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	}

	return raw, nil
}

// bodyMessage extracts an error message from a non-2xx body, enveloped or not.
func bodyMessage(raw []byte) string {
	payload, err := UnwrapEnvelope(raw)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return se.Message
		}
		return strings.TrimSpace(string(raw))
	}
	return errorMessage(payload)
}

// withPath fills in the request path on decoding errors.
func withPath(err error, path string) error {
	switch e := err.(type) {
	case *MalformedResponseError:
		e.Path = path
	case *StatusError:
		e.Path = path
	}
	return err
}
