package token

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// BearerType is the token type sent with every access token
const BearerType = "Bearer"

// Load reads the persisted token pair. A nil token with a nil error means no access
// token is stored.
func Load(ctx context.Context, repo Repo) (*oauth2.Token, error) {
	access, found, err := repo.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, errors.Wrap(err, "token.Load access token")
	}
	refresh, _, err := repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, errors.Wrap(err, "token.Load refresh token")
	}
	if !found || access == "" {
		if refresh == "" {
			return nil, nil
		}
		return &oauth2.Token{RefreshToken: refresh, TokenType: BearerType}, nil
	}
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: BearerType}, nil
}

// Save persists both halves of a token pair. An empty refresh token leaves the stored one in place.
func Save(ctx context.Context, repo Repo, t *oauth2.Token) error {
	if t == nil || t.AccessToken == "" {
		return errors.New("token.Save: empty access token")
	}
	if err := repo.Set(ctx, AccessTokenKey, t.AccessToken); err != nil {
		return errors.Wrap(err, "token.Save access token")
	}
	if t.RefreshToken == "" {
		return nil
	}
	if err := repo.Set(ctx, RefreshTokenKey, t.RefreshToken); err != nil {
		return errors.Wrap(err, "token.Save refresh token")
	}
	return nil
}

// Clear removes both tokens. Removing an absent key is not an error.
func Clear(ctx context.Context, repo Repo) error {
	accessErr := repo.Remove(ctx, AccessTokenKey)
	refreshErr := repo.Remove(ctx, RefreshTokenKey)
	if accessErr != nil {
		return errors.Wrap(accessErr, "token.Clear access token")
	}
	if refreshErr != nil {
		return errors.Wrap(refreshErr, "token.Clear refresh token")
	}
	return nil
}
