package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dyluth/kashi/internal/session"
	"github.com/dyluth/kashi/pkg/market"
)

// Options configures the authorization-code flow against the identity provider.
type Options struct {
	AuthorizeURL string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Tokens is the token endpoint response.
type Tokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Claims are the id token claims kashi reads.
type Claims struct {
	Subject  string `json:"sub"`
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
}

// AdminChecker reports whether a user is an administrator.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Service handles OAuth2 login.
type Service struct {
	opts Options
	http market.Doer
	now  func() time.Time
}

// NewService creates a login service. A nil doer uses http.DefaultClient.
func NewService(opts Options, doer market.Doer) (*Service, error) {
	if opts.TokenURL == "" {
		return nil, fmt.Errorf("token URL cannot be empty")
	}
	if opts.ClientID == "" {
		return nil, fmt.Errorf("client ID cannot be empty")
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Service{opts: opts, http: doer, now: time.Now}, nil
}

// GenerateState returns a random state value for the authorization request.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL returns the URL the user opens to log in.
func (s *Service) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.opts.ClientID)
	params.Set("redirect_uri", s.opts.RedirectURL)
	params.Set("response_type", "code")
	if len(s.opts.Scopes) > 0 {
		params.Set("scope", strings.Join(s.opts.Scopes, " "))
	}
	if state != "" {
		params.Set("state", state)
	}

	sep := "?"
	if strings.Contains(s.opts.AuthorizeURL, "?") {
		sep = "&"
	}
	return s.opts.AuthorizeURL + sep + params.Encode()
}

// Exchange trades an authorization code for tokens. The client authenticates
// with HTTP Basic when a client secret is configured.
func (s *Service) Exchange(ctx context.Context, code string) (*Tokens, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", s.opts.ClientID)
	data.Set("redirect_uri", s.opts.RedirectURL)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.opts.ClientSecret != "" {
		req.SetBasicAuth(s.opts.ClientID, s.opts.ClientSecret)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token exchange failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.IDToken == "" {
		return nil, fmt.Errorf("token response has no id_token")
	}

	return &tokens, nil
}

// ParseIDToken reads the claims of an id token without verifying its signature.
func ParseIDToken(idToken string) (*Claims, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid id token: expected 3 segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("invalid id token payload: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("invalid id token claims: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	return &claims, nil
}

// Login exchanges code, identifies the user and builds their session.
// A failed admin check logs a warning and leaves the user a non-admin.
func (s *Service) Login(ctx context.Context, code string, admins AdminChecker) (*session.Session, error) {
	tokens, err := s.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	claims, err := ParseIDToken(tokens.IDToken)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		UserID:     claims.Subject,
		Username:   claims.Username,
		IDToken:    tokens.IDToken,
		LoggedInAt: s.now().UTC(),
	}
	if sess.Username == "" {
		sess.Username = claims.Email
	}

	if admins != nil {
		isAdmin, err := admins.IsAdmin(ctx, claims.Subject)
		if err != nil {
			slog.Warn("failed to check admin status",
				slog.String("user_id", claims.Subject),
				slog.Any("error", err))
		}
		sess.IsAdmin = isAdmin
	}

	return sess, nil
}

// CodeFromInput accepts either a bare authorization code or the full redirect
// URL the browser landed on, and returns the code.
func CodeFromInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("authorization code cannot be empty")
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	if msg := u.Query().Get("error"); msg != "" {
		return "", fmt.Errorf("login failed: %s", msg)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect URL has no code parameter")
	}
	return code, nil
}
