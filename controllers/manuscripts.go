package controllers

import (
	"errors"
	"net/http"

	"rkive-api/config"
	"rkive-api/middleware"
	"rkive-api/models"
	"rkive-api/services"
	"rkive-api/utils"

	"github.com/gin-gonic/gin"
)

// multipart framing on top of the PDF itself
const uploadOverhead = 1 << 20

type ManuscriptResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PDFURL      string `json:"pdf_url"`
	Filename    string `json:"filename"`
	CreatedAt   string `json:"created_at"`
}

func manuscriptResponse(m models.Manuscript) ManuscriptResponse {
	resp := ManuscriptResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		PDFURL:      utils.MediaURL(config.Current.MediaURL, m.PDF),
		Filename:    m.Filename(),
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.FirstName != nil {
		resp.FirstName = *m.FirstName
	}
	if m.LastName != nil {
		resp.LastName = *m.LastName
	}
	return resp
}

// SubmitManuscript stores an uploaded PDF manuscript
// @Summary      Upload a manuscript
// @Tags         Manuscripts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData string true  "Title"
// @Param        description  formData string false "Description"
// @Param        pdf          formData file   true  "PDF file, at most 20 MB"
// @Success      201  {object}  ManuscriptResponse
// @Failure      400  {object}  map[string]string
// @Router       /manuscripts [post]
func SubmitManuscript(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxManuscriptSize+uploadOverhead)

	var input services.ManuscriptInput
	if err := c.ShouldBind(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(c, services.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data", "details": err.Error()})
		return
	}
	if err := utils.ValidateStruct(&input); err != nil {
		respondValidation(c, err)
		return
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		respondServiceError(c, services.ErrFileRequired)
		return
	}
	if fileHeader.Size > services.MaxManuscriptSize {
		respondServiceError(c, services.ErrFileTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	input.OwnerID = middleware.CurrentUserID(c)
	manuscript, err := services.NewManuscriptService(config.DB, config.Current).Create(input, fileHeader.Filename, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, manuscriptResponse(*manuscript))
}

// ListManuscripts searches manuscripts by title or description
// @Summary      Search manuscripts
// @Tags         Manuscripts
// @Produce      json
// @Param        q query string false "Case-insensitive substring"
// @Success      200  {array}   ManuscriptResponse
// @Router       /manuscripts [get]
func ListManuscripts(c *gin.Context) {
	manuscripts, err := services.NewManuscriptService(config.DB, config.Current).Search(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch manuscripts"})
		return
	}

	out := make([]ManuscriptResponse, 0, len(manuscripts))
	for _, m := range manuscripts {
		out = append(out, manuscriptResponse(m))
	}
	c.JSON(http.StatusOK, out)
}
