package services

import (
	"testing"
	"time"

	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripAndRevocation(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccountService(db)
	tokens := NewTokenService(db, nil, testutil.NewSettings(t))

	account, err := accounts.Create(AccountInput{Email: "ana@uni.edu", Password: "p", RePassword: "p", Roles: []string{"faculty"}})
	require.NoError(t, err)

	pair, err := tokens.IssuePair(account)
	require.NoError(t, err)

	claims, err := tokens.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, []string{"faculty"}, claims.Roles)

	_, err = tokens.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := tokens.Refresh(pair.Refresh, accounts)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, tokens.Revoke(pair.Refresh))
	require.NoError(t, tokens.Revoke(pair.Refresh))
	_, err = tokens.Refresh(pair.Refresh, accounts)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiryAndSecret(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccountService(db)
	settings := testutil.NewSettings(t)
	tokens := NewTokenService(db, nil, settings)

	account, err := accounts.Create(AccountInput{Email: "ana@uni.edu", Password: "p", RePassword: "p"})
	require.NoError(t, err)
	pair, err := tokens.IssuePair(account)
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(settings.AccessTokenTTL + time.Minute) }
	_, err = tokens.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	settings.JWTSecret = "another-secret"
	other := NewTokenService(db, nil, settings)
	_, err = other.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsDeletedAccount(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccountService(db)
	tokens := NewTokenService(db, nil, testutil.NewSettings(t))

	account, err := accounts.Create(AccountInput{Email: "ana@uni.edu", Password: "p", RePassword: "p"})
	require.NoError(t, err)
	pair, err := tokens.IssuePair(account)
	require.NoError(t, err)

	require.NoError(t, accounts.Delete(account.ID))
	_, err = tokens.Refresh(pair.Refresh, accounts)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
