package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const sweeperFailure = "abandoned: no progress before the sweeper cutoff"

// SweepReport summarizes one sweeper run.
type SweepReport struct {
	FailedJobs     int
	RemovedFiles   int
	ExpiredRevokes int64
	ExpiredResets  int64
}

// GenerationSweeper compensates generation jobs that stopped mid-way and removes
// working files nobody owns anymore.
type GenerationSweeper struct {
	db         *gorm.DB
	mediaRoot  string
	staleAfter time.Duration
	now        func() time.Time
}

func NewGenerationSweeper(db *gorm.DB, settings *config.Settings) *GenerationSweeper {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	stale := settings.SweeperStaleAfter
	if stale <= 0 {
		stale = 30 * time.Minute
	}
	return &GenerationSweeper{db: db, mediaRoot: settings.MediaRoot, staleAfter: stale, now: time.Now}
}

// Start schedules Run on the given cron spec. The caller stops the returned cron.
func (s *GenerationSweeper) Start(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()

		report, err := s.Run(ctx)
		if err != nil {
			log.Printf("[sweeper] run failed: %v", err)
			return
		}
		if report.FailedJobs > 0 || report.RemovedFiles > 0 || report.ExpiredRevokes > 0 || report.ExpiredResets > 0 {
			log.Printf("[sweeper] failed %d stale jobs, removed %d files, purged %d revoked and %d reset tokens",
				report.FailedJobs, report.RemovedFiles, report.ExpiredRevokes, report.ExpiredResets)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}

	log.Printf("[sweeper] started schedule=%q staleAfter=%s", schedule, s.staleAfter)
	c.Start()
	return c, nil
}

// Run performs a single sweep.
func (s *GenerationSweeper) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	cutoff := s.now().Add(-s.staleAfter)
	db := s.db.WithContext(ctx)

	var stale []models.GenerationJob
	if err := db.
		Where("status NOT IN ?", []models.JobStatus{models.JobCompleted, models.JobFailed}).
		Where("updated_at < ?", cutoff).
		Find(&stale).Error; err != nil {
		return report, err
	}

	for i := range stale {
		job := &stale[i]

		res := db.Model(&models.GenerationJob{}).
			Where("id = ? AND status = ?", job.ID, job.Status).
			Updates(map[string]interface{}{"status": models.JobFailed, "error": sweeperFailure})
		if res.Error != nil {
			log.Printf("[sweeper] job %s: %v", job.ID, res.Error)
			continue
		}
		// a job that moved on since the query owns its files again
		if res.RowsAffected == 0 {
			continue
		}
		report.FailedJobs++
		report.RemovedFiles += s.removeJobFiles(job)
	}

	removed, err := s.removeOrphanWorkingFiles(ctx, cutoff)
	if err != nil {
		return report, err
	}
	report.RemovedFiles += removed

	res := db.Where("expires_at < ?", s.now()).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return report, res.Error
	}
	report.ExpiredRevokes = res.RowsAffected

	res = db.Where("expires_at < ? OR used_at IS NOT NULL", s.now()).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return report, res.Error
	}
	report.ExpiredResets = res.RowsAffected

	return report, nil
}

func (s *GenerationSweeper) removeJobFiles(job *models.GenerationJob) int {
	removed := 0
	for _, rel := range []string{job.WorkingPath, job.DocxPath, job.PDFPath} {
		if rel == "" {
			continue
		}
		full, err := utils.MediaPath(s.mediaRoot, rel)
		if err != nil {
			continue
		}
		if err := os.Remove(full); err == nil {
			removed++
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[sweeper] job %s: remove %s: %v", job.ID, rel, err)
		}
	}
	return removed
}

// removeOrphanWorkingFiles deletes old <job>.docx files in generated_documents
// whose job is finished or unknown.
func (s *GenerationSweeper) removeOrphanWorkingFiles(ctx context.Context, cutoff time.Time) (int, error) {
	dir := filepath.Join(s.mediaRoot, utils.GeneratedDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".docx") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		jobID := strings.TrimSuffix(entry.Name(), ".docx")
		var job models.GenerationJob
		err = s.db.WithContext(ctx).Select("id", "status").Where("id = ?", jobID).Take(&job).Error
		switch {
		case err == nil && !job.Status.Terminal():
			continue
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("[sweeper] lookup job %s: %v", jobID, err)
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
			log.Printf("[sweeper] removed orphan %s", path.Join(utils.GeneratedDir, entry.Name()))
		}
	}
	return removed, nil
}
