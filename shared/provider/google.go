package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrGoogleEmailUnverified = errors.New("google email is not verified")
	ErrGoogleNotConfigured   = errors.New("google sign-in is not configured")
)

// GoogleIdentity is the verified subject of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
}

type GoogleOAuthProvider struct {
	clientID   string
	httpClient *http.Client
	endpoint   string
}

// GoogleOption configures a GoogleOAuthProvider.
type GoogleOption func(*GoogleOAuthProvider)

// WithHTTPClient sets the client used to reach Google.
func WithHTTPClient(client *http.Client) GoogleOption {
	return func(p *GoogleOAuthProvider) {
		p.httpClient = client
	}
}

// WithEndpoint overrides the Google API base URL.
func WithEndpoint(endpoint string) GoogleOption {
	return func(p *GoogleOAuthProvider) {
		p.endpoint = endpoint
	}
}

func NewGoogleOAuthProvider(clientID string, opts ...GoogleOption) *GoogleOAuthProvider {
	p := &GoogleOAuthProvider{
		clientID:   clientID,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ValidateIDToken asks Google to verify idToken and checks it was issued for
// this client to a verified email address.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if p.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(p.httpClient)}
	if p.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(p.endpoint))
	}

	oauth2Service, err := oauth2.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	tokenInfo, err := oauth2Service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail || tokenInfo.Email == "" {
		return nil, ErrGoogleEmailUnverified
	}

	return &GoogleIdentity{
		Subject: tokenInfo.UserId,
		Email:   strings.ToLower(strings.TrimSpace(tokenInfo.Email)),
	}, nil
}
