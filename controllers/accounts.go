package controllers

import (
	"net/http"

	"rkive-api/config"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

// ListAccounts returns every account
// @Summary      List accounts
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Account
// @Router       /accounts [get]
func ListAccounts(c *gin.Context) {
	accounts, err := services.NewAccountService(config.DB).List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// GetAccount returns one account
func GetAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	account, err := services.NewAccountService(config.DB).Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// CreateAccount creates an account with the requested roles
// @Summary      Create an account
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.AccountInput true "Account"
// @Success      201  {object}  models.Account
// @Failure      400  {object}  map[string]string
// @Router       /accounts [post]
func CreateAccount(c *gin.Context) {
	var input services.AccountInput
	if !bindAndValidate(c, &input) {
		return
	}

	account, err := services.NewAccountService(config.DB).Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// UpdateAccount applies a partial update; absent fields keep their value
// @Summary      Update an account
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Param        request body services.AccountPatch true "Fields to change"
// @Success      200  {object}  models.Account
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{id} [patch]
func UpdateAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch services.AccountPatch
	if !bindAndValidate(c, &patch) {
		return
	}

	account, err := services.NewAccountService(config.DB).Update(id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeleteAccount removes an account permanently
// @Summary      Delete an account
// @Tags         Accounts
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{id} [delete]
func DeleteAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := services.NewAccountService(config.DB).Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
