package controllers

import (
	"net/http"

	"rkive-api/config"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

// DocumentCount returns how many records of each kind exist
// @Summary      Document counters
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.DocumentCounts
// @Router       /document-count [get]
func DocumentCount(c *gin.Context) {
	counts, err := services.NewDocumentService(config.DB, config.Current).Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// ListDocumentFiles lists the stored files of one purpose directory
// @Summary      List stored files
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind query string true "application, panel or manuscripts"
// @Success      200  {array}   services.StoredFile
// @Failure      400  {object}  map[string]string
// @Router       /list-files [get]
func ListDocumentFiles(c *gin.Context) {
	files, err := services.NewDocumentService(config.DB, config.Current).ListFiles(c.DefaultQuery("kind", "application"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}
