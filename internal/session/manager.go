package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
	"github.com/DenisStobert/hh-autoapply-backend/internal/utils"
)

const (
	refreshKey       = "refresh"
	maxLoggedBodyLen = 512
)

var (
	// ErrUnauthorized means no credential is held.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoRefreshToken means the held credential cannot be renewed.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrReauthorize means the token expired and renewing it failed; a new
	// authorization flow is required.
	ErrReauthorize = errors.New("token expired and could not be refreshed")
)

// Authorizer talks to the OAuth token endpoint.
type Authorizer interface {
	Exchange(ctx context.Context, code string) (*headhunter.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*headhunter.Token, error)
}

// Manager owns the token lifecycle of the single logged-in user.
type Manager struct {
	store      *Store
	authorizer Authorizer
	logger     *zap.Logger

	group singleflight.Group
}

func NewManager(store *Store, authorizer Authorizer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:      store,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Token returns the current access token or ErrUnauthorized.
func (m *Manager) Token() (string, error) {
	token, ok := m.store.AccessToken()
	if !ok {
		return "", ErrUnauthorized
	}
	return token, nil
}

func (m *Manager) Authenticated() bool {
	_, ok := m.store.AccessToken()
	return ok
}

// Login exchanges an authorization code and stores the issued pair.
func (m *Manager) Login(ctx context.Context, code string) (Credential, error) {
	tok, err := m.authorizer.Exchange(ctx, code)
	if err != nil {
		m.logger.Error("exchanging authorization code",
			zap.Error(err),
			zap.String("body", utils.TruncateForLog(headhunter.ErrorBody(err), maxLoggedBodyLen)),
		)
		return Credential{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	cred := fromToken(tok)
	m.store.Set(cred)
	m.logger.Info("got a new token pair", zap.Time("expires_at", cred.ExpiresAt))

	return cred, nil
}

// Refresh renews the stored pair. stale is the access token the caller saw
// rejected: if the store already holds another one, it is returned as is.
// Concurrent callers share a single request to the token endpoint.
func (m *Manager) Refresh(ctx context.Context, stale string) (Credential, error) {
	ch := m.group.DoChan(refreshKey, func() (interface{}, error) {
		// The refresh is shared, so it must outlive the request that started it.
		return m.refresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	}
}

func (m *Manager) refresh(ctx context.Context, stale string) (Credential, error) {
	current, ok := m.store.Get()
	if !ok {
		return Credential{}, ErrUnauthorized
	}

	if stale != "" && current.AccessToken != stale {
		m.logger.Debug("token already refreshed by another request")
		return current, nil
	}

	if current.RefreshToken == "" {
		m.store.ClearIf(current.AccessToken)
		return Credential{}, ErrNoRefreshToken
	}

	tok, err := m.authorizer.Refresh(ctx, current.RefreshToken)
	if err != nil {
		// A rejected refresh token is never retried, the user has to log in again.
		m.store.ClearIf(current.AccessToken)
		m.logger.Error("refreshing token",
			zap.Error(err),
			zap.String("body", utils.TruncateForLog(headhunter.ErrorBody(err), maxLoggedBodyLen)),
		)
		return Credential{}, fmt.Errorf("refresh token: %w", err)
	}

	cred := fromToken(tok)
	if !m.store.CompareAndSwap(current.AccessToken, cred) {
		// A new login won the race. Its pair is newer than ours.
		latest, ok := m.store.Get()
		if !ok {
			return Credential{}, ErrUnauthorized
		}
		return latest, nil
	}

	m.logger.Info("token refreshed", zap.Time("expires_at", cred.ExpiresAt))

	return cred, nil
}

// WithRefresh calls fn with the current access token. When fn fails with an
// upstream 401 the token is refreshed once and fn is retried once. Any failure
// after the 401 is reported as ErrReauthorize.
func (m *Manager) WithRefresh(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token, err := m.Token()
	if err != nil {
		return err
	}

	err = fn(ctx, token)
	if !headhunter.IsUnauthorized(err) {
		return err
	}

	m.logger.Warn("access token expired, trying to refresh")

	cred, err := m.Refresh(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReauthorize, err)
	}

	if err := fn(ctx, cred.AccessToken); err != nil {
		return fmt.Errorf("%w: retry: %w", ErrReauthorize, err)
	}

	return nil
}

func fromToken(tok *headhunter.Token) Credential {
	return Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
	}
}
