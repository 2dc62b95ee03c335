package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/docgen"
	"rkive-api/models"
	"rkive-api/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentSpec describes how one kind of defense paperwork is produced.
type DocumentSpec struct {
	Kind     models.DocumentKind
	Template string
	Purpose  string
	Dir      string
	KeepDocx bool
}

var documentSpecs = map[models.DocumentKind]DocumentSpec{
	models.DocumentApplication: {
		Kind:     models.DocumentApplication,
		Template: "template_application.docx",
		Purpose:  "Application-for-Oral-Defense",
		Dir:      utils.ApplicationDir,
	},
	models.DocumentPanel: {
		Kind:     models.DocumentPanel,
		Template: "template_panel.docx",
		Purpose:  "IT-Nomination-of-Members-of-Oral-Examination-Panel",
		Dir:      utils.PanelDir,
		KeepDocx: true,
	},
}

// SpecFor returns the production settings of a document kind.
func SpecFor(kind models.DocumentKind) (DocumentSpec, error) {
	spec, ok := documentSpecs[kind]
	if !ok {
		return DocumentSpec{}, fmt.Errorf("unknown document kind %q", kind)
	}
	return spec, nil
}

// GenerationRequest is one render/convert/persist run.
type GenerationRequest struct {
	Kind    models.DocumentKind
	Fields  map[string]string
	OwnerID *uint
}

// GenerationResult points at the produced PDF.
type GenerationResult struct {
	Job      *models.GenerationJob
	RecordID uint
	PDFPath  string
	FileName string
	URL      string
}

type GenerationService struct {
	db        *gorm.DB
	settings  *config.Settings
	converter docgen.Converter
	faculty   *FacultyService
	now       func() time.Time
}

func NewGenerationService(db *gorm.DB, settings *config.Settings, converter docgen.Converter, faculty *FacultyService) *GenerationService {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	if faculty == nil {
		faculty = NewFacultyService(db, nil)
	}
	return &GenerationService{db: db, settings: settings, converter: converter, faculty: faculty, now: time.Now}
}

// SanitizeFields trims keys and drops empty and reserved ones.
func SanitizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		key = strings.TrimSpace(key)
		if key == "" || docgen.IsReserved(key) {
			continue
		}
		out[key] = value
	}
	return out
}

// TemplatePath returns the canonical template of kind.
func (s *GenerationService) TemplatePath(kind models.DocumentKind) (string, error) {
	spec, err := SpecFor(kind)
	if err != nil {
		return "", err
	}
	return s.settings.TemplatePath(spec.Template), nil
}

// Generate renders the template of req.Kind, converts it to PDF and persists the
// defense record. The job row tracks progress; on failure every produced file is
// removed and the job is marked failed.
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	spec, err := SpecFor(req.Kind)
	if err != nil {
		return nil, err
	}
	if s.converter == nil {
		return nil, errors.New("no document converter configured")
	}
	templatePath := s.settings.TemplatePath(spec.Template)
	if err := docgen.CheckTemplate(templatePath); err != nil {
		return nil, err
	}

	fields := SanitizeFields(req.Fields)
	values, refs := s.resolveFaculty(fields)

	jobContext := make(datatypes.JSONMap, len(fields))
	for k, v := range fields {
		jobContext[k] = v
	}
	jobID := uuid.NewString()
	job := &models.GenerationJob{
		ID:          jobID,
		Kind:        spec.Kind,
		Status:      models.JobPending,
		OwnerID:     req.OwnerID,
		Context:     jobContext,
		WorkingPath: path.Join(utils.GeneratedDir, jobID+".docx"),
	}
	if err := s.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create generation job: %w", err)
	}

	workingPath := filepath.Join(s.settings.MediaRoot, filepath.FromSlash(job.WorkingPath))
	defer utils.RemoveQuietly(workingPath)

	var produced []string
	fail := func(err error) (*GenerationResult, error) {
		if errs := utils.RemoveQuietly(produced...); len(errs) > 0 {
			log.Printf("[generation] job %s: cleanup failed: %v", job.ID, errs)
		}
		s.markFailed(job, err)
		return nil, err
	}

	if err := docgen.RenderTemplate(templatePath, workingPath, values); err != nil {
		return fail(err)
	}
	s.advance(job, models.JobRendered, nil)

	now := s.now()
	outDir := filepath.Join(s.settings.MediaRoot, spec.Dir)
	pdfName, err := utils.ReserveFile(outDir, spec.Purpose, "pdf", now)
	if err != nil {
		return fail(err)
	}
	pdfPath := filepath.Join(outDir, pdfName)
	produced = append(produced, pdfPath)
	pdfRel := path.Join(spec.Dir, pdfName)
	// Outputs go on the job row before conversion so the sweeper can find
	// them if this process never gets past Convert.
	if err := s.recordOutput(job, "pdf_path", pdfRel); err != nil {
		return fail(err)
	}

	var docxRel string
	if spec.KeepDocx {
		docxName := strings.TrimSuffix(pdfName, ".pdf") + ".docx"
		docxPath := filepath.Join(outDir, docxName)
		if err := copyExclusive(workingPath, docxPath); err != nil {
			return fail(err)
		}
		produced = append(produced, docxPath)
		docxRel = path.Join(spec.Dir, docxName)
		if err := s.recordOutput(job, "docx_path", docxRel); err != nil {
			return fail(err)
		}
	}

	convertCtx := ctx
	if s.settings.ConversionTimeout > 0 {
		var cancel context.CancelFunc
		convertCtx, cancel = context.WithTimeout(ctx, s.settings.ConversionTimeout)
		defer cancel()
	}
	if err := s.converter.Convert(convertCtx, workingPath, pdfPath); err != nil {
		return fail(err)
	}

	s.advance(job, models.JobConverted, nil)

	var recordID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		id, err := createDefenseRecord(tx, spec, fields, refs, req.OwnerID, job.ID, pdfRel, docxRel)
		if err != nil {
			return err
		}
		recordID = id
		return tx.Model(job).Updates(map[string]interface{}{
			"status":    models.JobCompleted,
			"record_id": id,
			"pdf_path":  pdfRel,
			"docx_path": docxRel,
		}).Error
	})
	if err != nil {
		return fail(fmt.Errorf("failed to save document record: %w", err))
	}

	job.Status = models.JobCompleted
	job.RecordID = &recordID
	job.PDFPath = pdfRel
	job.DocxPath = docxRel

	return &GenerationResult{
		Job:      job,
		RecordID: recordID,
		PDFPath:  pdfPath,
		FileName: pdfName,
		URL:      utils.MediaURL(s.settings.MediaURL, pdfRel),
	}, nil
}

// resolveFaculty swaps faculty identifiers for display names in the render
// values and collects the references to persist.
func (s *GenerationService) resolveFaculty(fields map[string]string) (map[string]string, models.PanelRefs) {
	values := make(map[string]string, len(fields))
	for k, v := range fields {
		values[k] = v
	}

	var refs models.PanelRefs
	for field := range models.FacultyRefColumns {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		name, id := s.faculty.Resolve(raw)
		values[field] = name
		refs.Set(field, id)
	}
	return values, refs
}

func (s *GenerationService) advance(job *models.GenerationJob, status models.JobStatus, extra map[string]interface{}) {
	updates := map[string]interface{}{"status": status}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.db.Model(job).Updates(updates).Error; err != nil {
		log.Printf("[generation] job %s: failed to record %s: %v", job.ID, status, err)
		return
	}
	job.Status = status
}

func (s *GenerationService) recordOutput(job *models.GenerationJob, column, rel string) error {
	if err := s.db.Model(job).Update(column, rel).Error; err != nil {
		return fmt.Errorf("failed to record %s on job: %w", column, err)
	}
	switch column {
	case "pdf_path":
		job.PDFPath = rel
	case "docx_path":
		job.DocxPath = rel
	}
	return nil
}

func (s *GenerationService) markFailed(job *models.GenerationJob, cause error) {
	log.Printf("[generation] job %s failed: %v", job.ID, cause)
	if err := s.db.Model(job).Updates(map[string]interface{}{
		"status": models.JobFailed,
		"error":  cause.Error(),
	}).Error; err != nil {
		log.Printf("[generation] job %s: failed to record failure: %v", job.ID, err)
		return
	}
	job.Status = models.JobFailed
	job.Error = cause.Error()
}

func optional(fields map[string]string, key string) *string {
	value := strings.TrimSpace(fields[key])
	if value == "" {
		return nil
	}
	return &value
}

func researchersFrom(fields map[string]string) models.Researchers {
	return models.Researchers{
		LeadResearcher: strings.TrimSpace(fields["lead_researcher"]),
		CoResearcher:   optional(fields, "co_researcher"),
		CoResearcher1:  optional(fields, "co_researcher1"),
		CoResearcher2:  optional(fields, "co_researcher2"),
		CoResearcher3:  optional(fields, "co_researcher3"),
		CoResearcher4:  optional(fields, "co_researcher4"),
	}
}

func createDefenseRecord(tx *gorm.DB, spec DocumentSpec, fields map[string]string, refs models.PanelRefs, owner *uint, jobID, pdfRel, docxRel string) (uint, error) {
	switch spec.Kind {
	case models.DocumentApplication:
		record := models.ApplicationDefense{
			FirstName:       optional(fields, "first_name"),
			LastName:        optional(fields, "last_name"),
			Department:      strings.TrimSpace(fields["department"]),
			ResearchTitle:   strings.TrimSpace(fields["research_title"]),
			LeadContactNo:   strings.TrimSpace(fields["lead_contactno"]),
			DatetimeDefense: strings.TrimSpace(fields["datetime_defense"]),
			PlaceDefense:    strings.TrimSpace(fields["place_defense"]),
			Documenter:      strings.TrimSpace(fields["documenter"]),
			Researchers:     researchersFrom(fields),
			PanelRefs:       refs,
			PDFFile:         pdfRel,
			JobID:           jobID,
			OwnerID:         owner,
		}
		if err := tx.Create(&record).Error; err != nil {
			return 0, err
		}
		return record.ID, nil
	case models.DocumentPanel:
		record := models.PanelDefense{
			FirstName:     optional(fields, "first_name"),
			LastName:      optional(fields, "last_name"),
			ResearchTitle: strings.TrimSpace(fields["research_title"]),
			Researchers:   researchersFrom(fields),
			PanelRefs:     refs,
			DocxFile:      docxRel,
			PDFFile:       pdfRel,
			JobID:         jobID,
			OwnerID:       owner,
		}
		if err := tx.Create(&record).Error; err != nil {
			return 0, err
		}
		return record.ID, nil
	}
	return 0, fmt.Errorf("unknown document kind %q", spec.Kind)
}

// copyExclusive copies src to a dst that must not exist yet.
func copyExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to keep docx: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to keep docx: %w", err)
	}
	return out.Close()
}

// Job returns a generation job by id.
func (s *GenerationService) Job(id string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
