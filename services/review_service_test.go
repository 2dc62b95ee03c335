package services

import (
	"testing"

	"rkive-api/models"
	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      []string
	subject string
	html    string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) Send(to []string, subject, html string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func TestReviewLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &recordingMailer{}
	svc := NewReviewService(db, mailer)

	owner := models.Account{Email: "student@uni.edu", Roles: models.NewRoles(models.RoleStudent)}
	require.NoError(t, db.Create(&owner).Error)
	reviewer := models.Faculty{Name: "Dr. Cruz"}
	require.NoError(t, db.Create(&reviewer).Error)
	defense := models.PanelDefense{ResearchTitle: "Study of <X>", PDFFile: "panel_nomination/a.pdf", OwnerID: &owner.ID}
	require.NoError(t, db.Create(&defense).Error)

	review, err := svc.Create(ReviewInput{ReviewerID: &reviewer.ID, DocumentKind: "panel", DocumentID: defense.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, review.Status)
	assert.Equal(t, models.PanelRef(defense.ID), review.Document)
	require.NotNil(t, review.Reviewer)
	assert.Equal(t, "Dr. Cruz", review.Reviewer.Name)

	comment := "Looks good"
	review, err = svc.Update(review.ID, ReviewPatch{Comment: &comment})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)

	approved := "approved"
	review, err = svc.Update(review.ID, ReviewPatch{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, review.Status)
	assert.Equal(t, "Looks good", review.Comment)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"student@uni.edu"}, mailer.sent[0].to)
	assert.Equal(t, "Your panel document was approved", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].html, "Study of &lt;X&gt;")
	assert.Contains(t, mailer.sent[0].html, "/media/panel_nomination/a.pdf")

	pending, err := svc.CountPending()
	require.NoError(t, err)
	assert.Zero(t, pending)

	list, err := svc.List(ReviewFilter{Status: "approved", Kind: "panel"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.List(ReviewFilter{Kind: "application"})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Delete(review.ID))
	assert.ErrorIs(t, svc.Delete(review.ID), ErrNotFound)
}

func TestReviewCreateRequiresExistingTargets(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewReviewService(db, nil)

	_, err := svc.Create(ReviewInput{DocumentKind: "application", DocumentID: 42})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = svc.Create(ReviewInput{DocumentKind: "thesis", DocumentID: 1})
	assert.Error(t, err)

	defense := models.ApplicationDefense{ResearchTitle: "A"}
	require.NoError(t, db.Create(&defense).Error)
	missing := uint(77)
	_, err = svc.Create(ReviewInput{ReviewerID: &missing, DocumentKind: "application", DocumentID: defense.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ReviewInput{DocumentKind: "application", DocumentID: defense.ID, Status: "maybe"})
	assert.Error(t, err)
}
