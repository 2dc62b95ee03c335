package services

import (
	"errors"
	"testing"

	"rkive-api/models"
	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]*Identity

func (f fakeVerifier) Verify(idToken string) (*Identity, error) {
	identity, ok := f[idToken]
	if !ok {
		return nil, ErrInvalidIdentityID
	}
	return identity, nil
}

func TestProviderAuthenticateCreatesThenReuses(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccountService(db)
	providers := NewProviderService(accounts, map[string]IdentityVerifier{
		"google": fakeVerifier{"good": {Email: "Grace@Example.com", FirstName: "Grace", LastName: "Hopper"}},
	})

	account, created, err := providers.Authenticate("Google", "good")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "grace@example.com", account.Email)
	assert.True(t, account.Roles.Has(models.RoleStudent))

	// an external account has no usable password
	_, err = accounts.Authenticate("grace@example.com", "!")
	assert.Error(t, err)

	again, created, err := providers.Authenticate("google", "good")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, account.ID, again.ID)
}

func TestProviderAuthenticateErrors(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccountService(db)
	providers := NewProviderService(accounts, map[string]IdentityVerifier{
		"google": fakeVerifier{"good": {Email: "x@example.com"}},
	})

	_, _, err := providers.Authenticate("github", "good")
	assert.True(t, errors.Is(err, ErrUnknownProvider))

	_, _, err = providers.Authenticate("google", "  ")
	assert.True(t, errors.Is(err, ErrInvalidIdentityID))

	_, _, err = providers.Authenticate("google", "forged")
	assert.True(t, errors.Is(err, ErrInvalidIdentityID))

	_, err = GoogleVerifier{}.Verify("anything")
	assert.True(t, errors.Is(err, ErrProviderDisabled))

	inactive := false
	account, _, err := providers.Authenticate("google", "good")
	require.NoError(t, err)
	_, err = accounts.Update(account.ID, AccountPatch{IsActive: &inactive})
	require.NoError(t, err)
	_, _, err = providers.Authenticate("google", "good")
	assert.True(t, errors.Is(err, ErrInactiveAccount))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("  Ada King Lovelace ")
	assert.Equal(t, "Ada King", first)
	assert.Equal(t, "Lovelace", last)

	first, last = splitName("Plato")
	assert.Equal(t, "Plato", first)
	assert.Empty(t, last)
}
