// Package auth handles OAuth authorization against the YouTube Data API
// and persistence of the resulting token across restarts.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytlive/config"
)

// oauthConfig builds the OAuth config from the installed-app client secret
// file, scoped to full YouTube account access (broadcasts, streams,
// playlists).
func oauthConfig(cfg *config.Config) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("auth: read client secret: %w", err)
	}
	oc, err := google.ConfigFromJSON(data, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("auth: parse client secret: %w", err)
	}
	return oc, nil
}

// Service builds an authorized YouTube API service from the stored token.
// Refreshed tokens are written back to the store so restarts reuse them.
// If no token is stored yet the error wraps ErrNoToken; run the
// authorization flow first.
func Service(ctx context.Context, cfg *config.Config, log *slog.Logger) (*youtube.Service, error) {
	if log == nil {
		log = slog.Default()
	}
	oc, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	store := &TokenStore{Path: cfg.TokenFile}
	tok, err := store.Load()
	if err != nil {
		return nil, err
	}

	src := &persistingSource{
		store: store,
		src:   oc.TokenSource(ctx, tok),
		last:  tok.AccessToken,
		log:   log,
	}

	svc, err := youtube.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("auth: build youtube service: %w", err)
	}
	return svc, nil
}

// persistingSource wraps a refreshing token source and saves each new token
// back to the store. Save failures are logged, not fatal: the in-memory
// token still works, the next restart just pays for one extra refresh.
type persistingSource struct {
	store *TokenStore
	src   oauth2.TokenSource
	log   *slog.Logger

	mu   sync.Mutex
	last string
}

// Token returns a valid token, persisting it when the access token changed.
func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			s.log.Warn("failed to persist refreshed token", "path", s.store.Path, "error", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// Flow drives the installed-app authorization: show AuthURL to the
// operator, exchange the pasted code for a token.
type Flow struct {
	oc    *oauth2.Config
	store *TokenStore
}

// NewFlow prepares an authorization flow from the client secret file.
func NewFlow(cfg *config.Config) (*Flow, error) {
	oc, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Flow{oc: oc, store: &TokenStore{Path: cfg.TokenFile}}, nil
}

// AuthURL returns the consent URL the operator must visit.
func (f *Flow) AuthURL() string {
	return f.oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// Exchange trades the pasted authorization code for a token and stores it.
func (f *Flow) Exchange(ctx context.Context, code string) error {
	tok, err := f.oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("auth: exchange code: %w", err)
	}
	return f.store.Save(tok)
}
