package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rkive-api/config"
	"rkive-api/docgen"
	"rkive-api/middleware"
	"rkive-api/models"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

type TemplateRevisionRequest struct {
	Rev  string `json:"rev" validate:"required,max=32"`
	Date string `json:"date" validate:"omitempty,max=64"`
}

func generationService() *services.GenerationService {
	return services.NewGenerationService(config.DB, config.Current, DocumentConverter, facultyService())
}

// stringify renders one decoded JSON value as template text.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

// requestFields reads the render context from a JSON object or a form body.
func requestFields(c *gin.Context) (map[string]string, error) {
	fields := map[string]string{}

	if strings.HasPrefix(c.ContentType(), "application/json") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return fields, nil
		}
		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.UseNumber()
		var raw map[string]interface{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("request body must be a JSON object: %w", err)
		}
		for key, value := range raw {
			fields[key] = stringify(value)
		}
		return fields, nil
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

func generateDocument(c *gin.Context, kind models.DocumentKind) {
	svc := generationService()

	templatePath, err := svc.TemplatePath(kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := docgen.CheckTemplate(templatePath); err != nil {
		if errors.Is(err, docgen.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template file not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fields, err := requestFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := svc.Generate(c.Request.Context(), services.GenerationRequest{
		Kind:    kind,
		Fields:  fields,
		OwnerID: middleware.CurrentUserID(c),
	})
	if err != nil {
		if errors.Is(err, docgen.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template file not found."})
			return
		}
		log.Printf("[generation] %s failed: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, config.Current.DocumentDisposition, result.FileName))
	c.Header("X-Generation-Job", result.Job.ID)
	c.Header("X-Document-ID", strconv.FormatUint(uint64(result.RecordID), 10))
	c.Header("X-Document-URL", result.URL)
	c.File(result.PDFPath)
}

// GenerateApplication renders the oral defense application and streams the PDF
// @Summary      Generate an oral defense application
// @Tags         Documents
// @Accept       json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        request body map[string]string true "Template fields"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /documents/application [post]
func GenerateApplication(c *gin.Context) {
	generateDocument(c, models.DocumentApplication)
}

// GeneratePanel renders the panel nomination and streams the PDF
// @Summary      Generate an examination panel nomination
// @Tags         Documents
// @Accept       json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        request body map[string]string true "Template fields"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /documents/panel [post]
func GeneratePanel(c *gin.Context) {
	generateDocument(c, models.DocumentPanel)
}

// GetGenerationJob reports the state of one generation run
func GetGenerationJob(c *gin.Context) {
	job, err := generationService().Job(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// PatchTemplateRevision stamps a revision number and date into a template
// @Summary      Stamp a template revision
// @Tags         Templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind path string true "application or panel"
// @Param        request body TemplateRevisionRequest true "Revision"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/templates/{kind}/revision [post]
func PatchTemplateRevision(c *gin.Context) {
	kind, err := models.ParseDocumentKind(c.Param("kind"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var req TemplateRevisionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	written, parts, err := services.NewTemplateService(config.Current).PatchRevision(kind, req.Rev, req.Date, "")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Template revision updated",
		"template": written,
		"parts":    parts,
	})
}
