package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rkive-api/models"
	"rkive-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSweeperFailsStaleJobsAndRemovesOrphans(t *testing.T) {
	db := testutil.NewDB(t)
	settings := testutil.NewSettings(t)
	sweeper := NewGenerationSweeper(db, settings)

	now := time.Now()
	old := now.Add(-2 * time.Hour)
	root := settings.MediaRoot

	stale := models.GenerationJob{
		ID: "stale", Kind: models.DocumentPanel, Status: models.JobConverted,
		WorkingPath: "generated_documents/stale.docx",
		PDFPath:     "panel_nomination/P_1.pdf",
		DocxPath:    "panel_nomination/P_1.docx",
	}
	fresh := models.GenerationJob{ID: "fresh", Kind: models.DocumentApplication, Status: models.JobRendered, WorkingPath: "generated_documents/fresh.docx"}
	done := models.GenerationJob{ID: "done", Kind: models.DocumentApplication, Status: models.JobCompleted}
	for _, job := range []*models.GenerationJob{&stale, &fresh, &done} {
		require.NoError(t, db.Create(job).Error)
	}
	require.NoError(t, db.Model(&models.GenerationJob{}).Where("id IN ?", []string{"stale", "done"}).UpdateColumn("updated_at", old).Error)

	touch(t, filepath.Join(root, "generated_documents", "stale.docx"), old)
	touch(t, filepath.Join(root, "panel_nomination", "P_1.pdf"), old)
	touch(t, filepath.Join(root, "panel_nomination", "P_1.docx"), old)
	touch(t, filepath.Join(root, "generated_documents", "fresh.docx"), old)
	touch(t, filepath.Join(root, "generated_documents", "done.docx"), old)
	touch(t, filepath.Join(root, "generated_documents", "ghost.docx"), old)
	touch(t, filepath.Join(root, "generated_documents", "recent.docx"), now)

	require.NoError(t, db.Create(&models.RevokedToken{JTI: "gone", ExpiresAt: old}).Error)
	require.NoError(t, db.Create(&models.RevokedToken{JTI: "live", ExpiresAt: now.Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.PasswordResetToken{AccountID: 1, TokenHash: "old", ExpiresAt: old}).Error)
	require.NoError(t, db.Create(&models.PasswordResetToken{AccountID: 1, TokenHash: "new", ExpiresAt: now.Add(time.Hour)}).Error)

	report, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedJobs)
	assert.Equal(t, 5, report.RemovedFiles)
	assert.Equal(t, int64(1), report.ExpiredRevokes)
	assert.Equal(t, int64(1), report.ExpiredResets)

	var job models.GenerationJob
	require.NoError(t, db.First(&job, "id = ?", "stale").Error)
	assert.Equal(t, models.JobFailed, job.Status)
	job = models.GenerationJob{}
	require.NoError(t, db.First(&job, "id = ?", "fresh").Error)
	assert.Equal(t, models.JobRendered, job.Status)

	entries, err := os.ReadDir(filepath.Join(root, "generated_documents"))
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"fresh.docx", "recent.docx"}, left)

	_, err = os.Stat(filepath.Join(root, "panel_nomination", "P_1.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestSweeperStartRejectsBadSchedule(t *testing.T) {
	sweeper := NewGenerationSweeper(testutil.NewDB(t), testutil.NewSettings(t))
	_, err := sweeper.Start("not a schedule")
	assert.Error(t, err)
}
