package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"rkive-api/config"
	"rkive-api/docgen"
	"rkive-api/models"
	"rkive-api/services"
	"rkive-api/utils"

	"github.com/gin-gonic/gin"
)

var (
	// DocumentConverter turns rendered DOCX files into PDFs.
	DocumentConverter docgen.Converter = docgen.NewNativeConverter()
	// Mailer delivers review notifications; nil disables them.
	Mailer config.Mailer
	// IdentityVerifiers maps an OAuth provider name to its token verifier.
	IdentityVerifiers = map[string]services.IdentityVerifier{}
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// bindAndValidate decodes the JSON body into dst and runs its validate tags.
func bindAndValidate(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}

func respondValidation(c *gin.Context, err error) {
	var verrs utils.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error(), "fields": verrs})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondServiceError maps service sentinels to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrUnknownProvider),
		errors.Is(err, docgen.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrFileRequired),
		errors.Is(err, services.ErrNotPDF),
		errors.Is(err, services.ErrUnknownListing),
		errors.Is(err, models.ErrInvalidValue),
		errors.Is(err, services.ErrProviderDisabled),
		errors.Is(err, docgen.ErrNoPlaceholders):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrInvalidIdentityID):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrInactiveAccount):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
