package controllers

import (
	"net/http"

	"rkive-api/config"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

func facultyService() *services.FacultyService {
	return services.NewFacultyService(config.DB, services.NewRedisService(nil))
}

// ListFaculty returns the faculty directory ordered by name
// @Summary      List faculty
// @Tags         Faculty
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Faculty
// @Router       /faculty [get]
func ListFaculty(c *gin.Context) {
	faculty, err := facultyService().List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch faculty"})
		return
	}
	c.JSON(http.StatusOK, faculty)
}

// CreateFaculty adds a directory entry
// @Summary      Create a faculty entry
// @Tags         Faculty
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.FacultyInput true "Faculty"
// @Success      201  {object}  models.Faculty
// @Router       /faculty [post]
func CreateFaculty(c *gin.Context) {
	var input services.FacultyInput
	if !bindAndValidate(c, &input) {
		return
	}
	faculty, err := facultyService().Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, faculty)
}

// DeleteFaculty removes an entry and clears every reference to it
// @Summary      Delete a faculty entry
// @Tags         Faculty
// @Security     BearerAuth
// @Param        id path int true "Faculty ID"
// @Success      204
// @Router       /faculty/{id} [delete]
func DeleteFaculty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := facultyService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
