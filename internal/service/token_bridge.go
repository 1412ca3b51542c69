package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	authorizationScope = "user-read-playback-state user-modify-playback-state user-read-currently-playing streaming user-read-email user-read-private"
	stateAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	stateLength        = 16
	stateTTL           = 5 * time.Minute
)

var (
	ErrBridgeNotConfigured   = errors.New("spotify client id and secret are required")
	ErrAuthorizationExchange = errors.New("authorization code exchange failed")
	ErrInvalidState          = errors.New("authorization state mismatch")
)

type BridgeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AccountsURL  string
	ClientURL    string
	StateSecret  string
	HTTPClient   *http.Client
}

// TokenBridge performs the authorization-code exchange on behalf of the
// client and holds the resulting bearer credential for the process lifetime.
type TokenBridge struct {
	cfg         BridgeConfig
	httpClient  *http.Client
	stateSecret []byte

	mu    sync.RWMutex
	token string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewTokenBridge(cfg BridgeConfig) (*TokenBridge, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, ErrBridgeNotConfigured
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.AccountsURL = strings.TrimRight(cfg.AccountsURL, "/")
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	return &TokenBridge{
		cfg:         cfg,
		httpClient:  httpClient,
		stateSecret: []byte(cfg.StateSecret),
	}, nil
}

// BeginAuthorization returns the authorize URL and the anti-replay state
// embedded in it.
func (b *TokenBridge) BeginAuthorization() (string, string) {
	state := generateState(stateLength)
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", b.cfg.ClientID)
	params.Set("scope", authorizationScope)
	params.Set("redirect_uri", b.cfg.RedirectURI)
	params.Set("state", state)
	return b.cfg.AccountsURL + "/authorize?" + params.Encode(), state
}

// CompleteAuthorization exchanges code for an access token. On failure the
// current credential is left untouched.
func (b *TokenBridge) CompleteAuthorization(ctx context.Context, code string) error {
	token, err := b.exchange(ctx, code)
	if err != nil {
		log.Printf("auth callback: %v", err)
		return err
	}

	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
	log.Printf("auth callback: access token obtained")
	return nil
}

// CurrentToken is safe on a nil bridge, which never holds a credential.
func (b *TokenBridge) CurrentToken() (string, bool) {
	if b == nil {
		return "", false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token, b.token != ""
}

func (b *TokenBridge) SuccessRedirect() string {
	return b.cfg.ClientURL
}

func (b *TokenBridge) FailureRedirect() string {
	return b.cfg.ClientURL + "?error=auth_failed"
}

// SignState wraps state in a short-lived HS256 token suitable for a cookie.
func (b *TokenBridge) SignState(state string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        state,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.stateSecret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// VerifyState checks that signed was issued by SignState for state.
func (b *TokenBridge) VerifyState(signed, state string) error {
	token, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return b.stateSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidState
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" || claims.ID != state {
		return ErrInvalidState
	}
	return nil
}

func (b *TokenBridge) exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: missing code", ErrAuthorizationExchange)
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("redirect_uri", b.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.AccountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrAuthorizationExchange, err)
	}
	req.SetBasicAuth(b.cfg.ClientID, b.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorizationExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrAuthorizationExchange, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAuthorizationExchange, resp.StatusCode, string(body))
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrAuthorizationExchange, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access_token", ErrAuthorizationExchange)
	}
	return payload.AccessToken, nil
}

// generateState draws n characters one at a time from stateAlphabet. It
// correlates a redirect, it is not a secret.
func generateState(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(stateAlphabet[rand.Intn(len(stateAlphabet))])
	}
	return sb.String()
}
