package controllers

import (
	"net/http"
	"strconv"

	"rkive-api/config"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.DB, Mailer)
}

// ListReviews returns reviews, optionally filtered by status, kind and document
// @Summary      List submission reviews
// @Tags         Reviews
// @Produce      json
// @Security     BearerAuth
// @Param        status       query string false "pending, approved or rejected"
// @Param        kind         query string false "application or panel"
// @Param        document_id  query int    false "Reviewed document id"
// @Success      200  {array}   models.SubmissionReview
// @Router       /reviews [get]
func ListReviews(c *gin.Context) {
	filter := services.ReviewFilter{
		Status: c.Query("status"),
		Kind:   c.Query("kind"),
	}
	if raw := c.Query("document_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document_id"})
			return
		}
		filter.DocumentID = uint(id)
	}

	reviews, err := reviewService().List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetReview returns one review
func GetReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	review, err := reviewService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// CreateReview opens a review on a generated document
// @Summary      Create a submission review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.ReviewInput true "Review"
// @Success      201  {object}  models.SubmissionReview
// @Failure      404  {object}  map[string]string
// @Router       /reviews [post]
func CreateReview(c *gin.Context) {
	var input services.ReviewInput
	if !bindAndValidate(c, &input) {
		return
	}
	review, err := reviewService().Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// UpdateReview changes comment, reviewer or status
// @Summary      Update a submission review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Param        request body services.ReviewPatch true "Fields to change"
// @Success      200  {object}  models.SubmissionReview
// @Router       /reviews/{id} [patch]
func UpdateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch services.ReviewPatch
	if !bindAndValidate(c, &patch) {
		return
	}
	review, err := reviewService().Update(id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview removes a review
func DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := reviewService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
