package uberauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/httpclient"
	"github.com/farewise/fare-compare/pkg/logger"
)

// expiryBuffer is subtracted from the upstream expiry so tokens are refreshed
// before they actually lapse.
const expiryBuffer = 300 * time.Second

// Credential is a cached OAuth credential.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// valid reports whether the credential can still be used at time t.
func (c *Credential) valid(t time.Time) bool {
	return c != nil && c.AccessToken != "" && t.Before(c.ExpiresAt)
}

// Manager caches an OAuth credential and keeps it fresh. Reads of a valid
// cached token never block behind a refresh; at most one goroutine performs
// a token exchange at a time.
type Manager struct {
	cfg    *config.UberConfig
	client *httpclient.Client

	mu   sync.RWMutex
	cred *Credential

	now func() time.Time
}

// NewManager creates a token manager for the configured OAuth application.
func NewManager(cfg *config.UberConfig, timeout time.Duration) *Manager {
	return &Manager{
		cfg:    cfg,
		client: httpclient.NewClient(cfg.TokenURL, timeout),
		now:    time.Now,
	}
}

// AuthorizationURL builds the URL a user visits to grant access.
func (m *Manager) AuthorizationURL(scopes []string) string {
	params := url.Values{
		"client_id":     {m.cfg.ClientID},
		"response_type": {"code"},
		"redirect_uri":  {m.cfg.RedirectURI},
	}
	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}
	return m.cfg.AuthURL + "?" + params.Encode()
}

// HasToken reports whether a credential is currently cached, valid or not.
func (m *Manager) HasToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred != nil
}

// Token returns a usable access token. A valid cached token is returned
// without blocking. Otherwise the manager refreshes the cached credential,
// or falls back to a client-credentials grant when nothing is cached.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.cred.valid(m.now()) {
		token := m.cred.AccessToken
		m.mu.RUnlock()
		return token, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if m.cred.valid(m.now()) {
		return m.cred.AccessToken, nil
	}

	if m.cred != nil && m.cred.RefreshToken != "" {
		cred, err := m.exchange(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {m.cred.RefreshToken},
		})
		if err != nil {
			// A failed refresh invalidates the whole credential: the
			// refresh token may be revoked, so the next call starts over.
			m.cred = nil
			return "", fmt.Errorf("token refresh failed: %w", err)
		}
		m.cred = cred
		return cred.AccessToken, nil
	}

	cred, err := m.exchange(ctx, url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"request.estimate"},
	})
	if err != nil {
		return "", fmt.Errorf("client credentials grant failed: %w", err)
	}
	m.cred = cred
	return cred.AccessToken, nil
}

// ExchangeAuthorizationCode trades an authorization code for a credential and
// caches it.
func (m *Manager) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	cred, err := m.exchange(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {m.cfg.RedirectURI},
	})
	if err != nil {
		return fmt.Errorf("authorization code exchange failed: %w", err)
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	logger.InfoContext(ctx, "OAuth credential obtained",
		zap.Time("expires_at", cred.ExpiresAt),
		zap.Bool("has_refresh_token", cred.RefreshToken != ""),
	)
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// exchange performs a form-encoded token request. Callers hold the write lock
// or are otherwise serialized.
func (m *Manager) exchange(ctx context.Context, form url.Values) (*Credential, error) {
	form.Set("client_id", m.cfg.ClientID)
	form.Set("client_secret", m.cfg.ClientSecret)

	body, err := m.client.PostForm(ctx, "", form)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access token")
	}

	return &Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    m.now().Add(time.Duration(resp.ExpiresIn)*time.Second - expiryBuffer),
	}, nil
}
