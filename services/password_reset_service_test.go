package services

import (
	"testing"
	"time"

	"rkive-api/models"
	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetFlow(t *testing.T) {
	db := testutil.NewDB(t)
	settings := testutil.NewSettings(t)
	settings.AppBaseURL = "https://rkive.example/app/"
	mailer := &recordingMailer{}

	accounts := NewAccountService(db)
	account, err := accounts.Create(AccountInput{FirstName: "Ana", Email: "ana@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)

	svc := NewPasswordResetService(db, mailer, settings)
	tokens := []string{"first-token", "second-token"}
	svc.generate = func() (string, error) {
		next := tokens[0]
		tokens = tokens[1:]
		return next, nil
	}

	require.NoError(t, svc.Request("nobody@uni.edu", "127.0.0.1", "test"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, svc.Request("ANA@uni.edu", "127.0.0.1", "test"))
	require.NoError(t, svc.Request("ana@uni.edu", "127.0.0.1", "test"))
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, []string{"ana@uni.edu"}, mailer.sent[1].to)
	assert.Contains(t, mailer.sent[1].html, "https://rkive.example/app/reset-password?token=second-token")

	// issuing a new link spends the previous one
	assert.ErrorIs(t, svc.Confirm("first-token", "newpass1", "newpass1"), ErrInvalidResetToken)
	assert.ErrorIs(t, svc.Confirm("second-token", "newpass1", "other"), ErrPasswordMismatch)
	require.NoError(t, svc.Confirm("second-token", "newpass1", "newpass1"))
	assert.ErrorIs(t, svc.Confirm("second-token", "again123", "again123"), ErrInvalidResetToken)

	_, err = accounts.Authenticate(account.Email, "newpass1")
	assert.NoError(t, err)

	var stored models.PasswordResetToken
	require.NoError(t, db.Last(&stored).Error)
	assert.NotEqual(t, "second-token", stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)
}

func TestPasswordResetExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	settings := testutil.NewSettings(t)
	svc := NewPasswordResetService(db, nil, settings)
	svc.generate = func() (string, error) { return "tok", nil }

	_, err := NewAccountService(db).Create(AccountInput{Email: "ana@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)
	require.NoError(t, svc.Request("ana@uni.edu", "", ""))

	svc.now = func() time.Time { return time.Now().Add(settings.PasswordResetTTL + time.Minute) }
	assert.ErrorIs(t, svc.Confirm("tok", "newpass1", "newpass1"), ErrInvalidResetToken)
}
