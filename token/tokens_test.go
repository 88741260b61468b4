package token_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-event-portal/token"
	tokenrepofake "github.com/jrsteele09/go-event-portal/token/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoadEmptyStore(t *testing.T) {
	tok, err := token.Load(context.Background(), tokenrepofake.NewFakeTokenRepo())
	require.NoError(t, err)
	require.Nil(t, tok)
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	repo := tokenrepofake.NewFakeTokenRepo()

	require.NoError(t, token.Save(ctx, repo, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	tok, err := token.Load(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, "a", tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, token.BearerType, tok.Type())

	require.NoError(t, token.Save(ctx, repo, &oauth2.Token{AccessToken: "a2"}))
	require.Equal(t, "r", repo.Value(token.RefreshTokenKey))

	require.NoError(t, token.Clear(ctx, repo))
	require.NoError(t, token.Clear(ctx, repo))
	tok, err = token.Load(ctx, repo)
	require.NoError(t, err)
	require.Nil(t, tok)
}

func TestSaveRejectsEmptyAccessToken(t *testing.T) {
	require.Error(t, token.Save(context.Background(), tokenrepofake.NewFakeTokenRepo(), &oauth2.Token{}))
}
