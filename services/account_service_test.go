package services

import (
	"testing"

	"rkive-api/models"
	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countAccounts(t *testing.T, svc *AccountService) int {
	t.Helper()
	accounts, err := svc.List()
	require.NoError(t, err)
	return len(accounts)
}

func TestCreateAccountPasswordMismatch(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))

	_, err := svc.Create(AccountInput{Email: "ana@uni.edu", Password: "secret123", RePassword: "secret124"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, 0, countAccounts(t, svc))
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))

	first, err := svc.Create(AccountInput{Email: "Ana@Uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@uni.edu", first.Email)
	assert.True(t, first.Roles.Has(models.RoleStudent))
	assert.NotEqual(t, "secret123", first.Password)

	_, err = svc.Create(AccountInput{Email: "ana@uni.edu ", Password: "other123", RePassword: "other123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, countAccounts(t, svc))
}

func TestCreateAccountWithRolesAndInactive(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))
	inactive := false

	account, err := svc.Create(AccountInput{
		Email:      "dean@uni.edu",
		Password:   "secret123",
		RePassword: "secret123",
		Roles:      []string{"dean", "is_faculty"},
		IsActive:   &inactive,
	})
	require.NoError(t, err)

	stored, err := svc.Get(account.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, []string{"dean", "faculty"}, stored.Roles.Names())

	_, err = svc.Create(AccountInput{Email: "x@uni.edu", Password: "p", RePassword: "p", Roles: []string{"wizard"}})
	assert.Error(t, err)
}

func TestUpdateAccountKeepsAbsentFields(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))
	account, err := svc.Create(AccountInput{FirstName: "Ana", LastName: "Reyes", Email: "ana@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)

	last := "Cruz"
	updated, err := svc.Update(account.ID, AccountPatch{LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.FirstName)
	assert.Equal(t, "Cruz", updated.LastName)
	assert.Equal(t, "ana@uni.edu", updated.Email)
	assert.Equal(t, account.Password, updated.Password)

	roles := []string{"staff"}
	updated, err = svc.Update(account.ID, AccountPatch{Roles: &roles})
	require.NoError(t, err)
	assert.True(t, updated.Roles.Has(models.RoleStaff))
	assert.False(t, updated.Roles.Has(models.RoleStudent))

	pw, other := "newsecret1", "newsecret2"
	_, err = svc.Update(account.ID, AccountPatch{Password: &pw, RePassword: &other})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = svc.Update(9999, AccountPatch{LastName: &last})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAccountRejectsTakenEmail(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))
	_, err := svc.Create(AccountInput{Email: "a@uni.edu", Password: "p", RePassword: "p"})
	require.NoError(t, err)
	b, err := svc.Create(AccountInput{Email: "b@uni.edu", Password: "p", RePassword: "p"})
	require.NoError(t, err)

	email := "A@uni.edu"
	_, err = svc.Update(b.ID, AccountPatch{Email: &email})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteAccountKeepsDefenseAndClearsAdviser(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAccountService(db)

	adviser, err := svc.Create(AccountInput{Email: "adviser@uni.edu", Password: "p", RePassword: "p", Roles: []string{"faculty"}})
	require.NoError(t, err)
	student, err := svc.Create(AccountInput{Email: "student@uni.edu", Password: "p", RePassword: "p"})
	require.NoError(t, err)

	faculty := models.Faculty{Name: "Dr. Reyes", AccountID: &adviser.ID}
	require.NoError(t, db.Create(&faculty).Error)

	defense := models.ApplicationDefense{
		ResearchTitle: "Study of X",
		PanelRefs:     models.PanelRefs{AdviserID: &faculty.ID, Panel1ID: &faculty.ID},
		OwnerID:       &student.ID,
	}
	require.NoError(t, db.Create(&defense).Error)
	review := models.SubmissionReview{ReviewerID: &faculty.ID, Document: models.ApplicationRef(defense.ID)}
	require.NoError(t, db.Create(&review).Error)

	require.NoError(t, svc.Delete(adviser.ID))

	var stored models.ApplicationDefense
	require.NoError(t, db.First(&stored, defense.ID).Error)
	assert.Nil(t, stored.AdviserID)
	assert.Nil(t, stored.Panel1ID)
	assert.Equal(t, student.ID, *stored.OwnerID)

	var storedReview models.SubmissionReview
	require.NoError(t, db.First(&storedReview, review.ID).Error)
	assert.Nil(t, storedReview.ReviewerID)

	var facultyCount int64
	require.NoError(t, db.Model(&models.Faculty{}).Count(&facultyCount).Error)
	assert.Zero(t, facultyCount)

	require.NoError(t, svc.Delete(student.ID))
	require.NoError(t, db.First(&stored, defense.ID).Error)
	assert.Nil(t, stored.OwnerID)

	assert.ErrorIs(t, svc.Delete(student.ID), ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))
	_, err := svc.Create(AccountInput{Email: "ana@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)

	account, err := svc.Authenticate("ANA@uni.edu", "secret123")
	require.NoError(t, err)
	assert.NotNil(t, account.LastLogin)

	_, err = svc.Authenticate("ana@uni.edu", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("nobody@uni.edu", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateSuperuserHoldsEveryRole(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))

	account, err := svc.CreateSuperuser("root@uni.edu", "secret123", "Root", "")
	require.NoError(t, err)
	for _, role := range models.AllRoles {
		assert.True(t, account.Roles.Has(role), role.String())
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewAccountService(testutil.NewDB(t))
	account, err := svc.Create(AccountInput{Email: "ana@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(account.ID, "wrong", "next456"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(account.ID, "secret123", " "), ErrPasswordRequired)
	require.NoError(t, svc.ChangePassword(account.ID, "secret123", "next456"))

	_, err = svc.Authenticate("ana@uni.edu", "next456")
	assert.NoError(t, err)
	assert.ErrorIs(t, svc.ChangePassword(9999, "x", "y"), ErrNotFound)
}

func TestMigratePlaintextPasswords(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAccountService(db)

	hashed, err := svc.Create(AccountInput{Email: "hashed@uni.edu", Password: "secret123", RePassword: "secret123"})
	require.NoError(t, err)
	plain := models.Account{Email: "plain@uni.edu", Password: "legacy-pass", IsActive: true, Roles: models.NewRoles(models.RoleStudent)}
	require.NoError(t, db.Create(&plain).Error)
	external := models.Account{Email: "google@uni.edu", Password: "!", IsActive: true}
	require.NoError(t, db.Create(&external).Error)

	report, err := svc.MigratePlaintextPasswords()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rehashed)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Failed)

	_, err = svc.Authenticate("plain@uni.edu", "legacy-pass")
	assert.NoError(t, err)
	_, err = svc.Authenticate(hashed.Email, "secret123")
	assert.NoError(t, err)
}
