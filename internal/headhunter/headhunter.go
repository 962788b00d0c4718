package headhunter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.hh.ru"
	authURL     = "https://hh.ru/oauth/authorize"
	tokenPath   = "/token"
	mineResumID = "mine"
	userAgent   = "DenisStobert/hh-autoapply-backend"
	// Default page size for vacancy search.
	perPage = "20"
)

// Credentials are the OAuth application settings registered on dev.hh.ru.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client talks to the hh.ru API. It keeps no session state: every
// authenticated call receives the access token to use.
type Client struct {
	logger      *zap.Logger
	credentials Credentials
	HTTPClient  *http.Client
	UserAgent   string
	APIURL      string
	AuthURL     string
}

func New(logger *zap.Logger, credentials Credentials) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger:      logger,
		credentials: credentials,
		APIURL:      apiURL,
		AuthURL:     authURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}
}

// Me returns the profile of the token owner.
func (c *Client) Me(ctx context.Context, token string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, c.APIURL+"/me", nil)
}
