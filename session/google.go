// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/models"
)

// ErrUnverifiedEmail means the provider did not vouch for the email.
var ErrUnverifiedEmail = errors.New("email not verified by identity provider")

// Provider is an OAuth identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (models.Identity, error)
}

// GoogleProvider signs reviewers in with Google and reads their verified
// email from the userinfo endpoint. Provider tokens never leave the server.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userinfoOpt []option.ClientOption
}

// NewGoogleProvider builds the provider from the OAuth client settings.
// userinfoOpts are appended when calling the userinfo API.
func NewGoogleProvider(cfg cliparse.Config, userinfoOpts ...option.ClientOption) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		userinfoOpt: userinfoOpts,
	}
}

// WithEndpoint points the token exchange at another OAuth server.
func (p *GoogleProvider) WithEndpoint(ep oauth2.Endpoint) *GoogleProvider {
	p.oauth.Endpoint = ep
	return p
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Identify exchanges the authorization code and returns the verified
// identity behind it.
func (p *GoogleProvider) Identify(ctx context.Context, code string) (models.Identity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(p.oauth.TokenSource(ctx, tok))}, p.userinfoOpt...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if info.Email == "" || (info.VerifiedEmail != nil && !*info.VerifiedEmail) {
		return models.Identity{}, ErrUnverifiedEmail
	}

	return models.Identity{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
