package services

import (
	"log"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/docgen"
	"rkive-api/models"
)

// RevisionDateLayout is the format stamped when no date is supplied.
const RevisionDateLayout = "January 2, 2006"

type TemplateService struct {
	settings *config.Settings
	now      func() time.Time
}

func NewTemplateService(settings *config.Settings) *TemplateService {
	if settings == nil {
		settings = config.Current
	}
	return &TemplateService{settings: settings, now: time.Now}
}

// PatchRevision stamps rev and date into the canonical template of kind. With an
// empty out the template is replaced in place. It returns the written path.
func (s *TemplateService) PatchRevision(kind models.DocumentKind, rev, date, out string) (string, []string, error) {
	spec, err := SpecFor(kind)
	if err != nil {
		return "", nil, err
	}

	src := s.settings.TemplatePath(spec.Template)
	if strings.TrimSpace(out) == "" {
		out = src
	}
	if strings.TrimSpace(date) == "" {
		date = s.now().Format(RevisionDateLayout)
	}

	parts, err := docgen.PatchArchive(src, out, docgen.Revision{Rev: strings.TrimSpace(rev), Date: strings.TrimSpace(date)})
	if err != nil {
		return "", nil, err
	}
	log.Printf("[template] %s patched rev=%q date=%q parts=%v", spec.Template, rev, date, parts)
	return out, parts, nil
}
