package services

import (
	"errors"
	"fmt"
	"strings"

	"rkive-api/models"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var (
	ErrUnknownProvider   = errors.New("unsupported auth provider")
	ErrProviderDisabled  = errors.New("provider is not configured")
	ErrInvalidIdentityID = errors.New("invalid identity token")
)

// Identity is what an external provider vouches for.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
}

// IdentityVerifier checks a provider-issued id token.
type IdentityVerifier interface {
	Verify(idToken string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against one client id.
type GoogleVerifier struct {
	ClientID string
}

func (g GoogleVerifier) Verify(idToken string) (*Identity, error) {
	if g.ClientID == "" {
		return nil, ErrProviderDisabled
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.ClientID}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentityID, err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentityID, err)
	}
	if strings.TrimSpace(claimSet.Email) == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrInvalidIdentityID)
	}

	first, last := splitName(claimSet.Name)
	return &Identity{Email: claimSet.Email, FirstName: first, LastName: last}, nil
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if idx := strings.LastIndex(full, " "); idx > 0 {
		return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
	}
	return full, ""
}

// ProviderService signs accounts in through external identity providers.
type ProviderService struct {
	accounts  *AccountService
	verifiers map[string]IdentityVerifier
}

func NewProviderService(accounts *AccountService, verifiers map[string]IdentityVerifier) *ProviderService {
	return &ProviderService{accounts: accounts, verifiers: verifiers}
}

// Authenticate verifies idToken with provider and returns the matching account,
// creating it on first sign-in.
func (s *ProviderService) Authenticate(provider, idToken string) (*models.Account, bool, error) {
	verifier, ok := s.verifiers[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, false, ErrUnknownProvider
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, false, ErrInvalidIdentityID
	}

	identity, err := verifier.Verify(idToken)
	if err != nil {
		return nil, false, err
	}
	return s.accounts.FindOrCreateExternal(identity.Email, identity.FirstName, identity.LastName)
}
