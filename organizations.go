package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/middlewares"
	"github.com/craftflowhq/craftflow_backend/models"
)

func (a *App) createOrganization(c *gin.Context) {
	var input models.NewOrganization
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	claim := middlewares.CtxValue(c.Request.Context())
	org, err := models.CreateOrganization(c.Request.Context(), a.db, claim.UserId, &input)
	if err != nil {
		a.respondError(c, "organizations.go", "createOrganization", err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (a *App) listOrganizations(c *gin.Context) {
	claim := middlewares.CtxValue(c.Request.Context())
	orgs, err := models.GetOrganizationsForUser(c.Request.Context(), a.db, claim.UserId)
	if err != nil {
		a.respondError(c, "organizations.go", "listOrganizations", err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (a *App) getOrganization(c *gin.Context) {
	org, err := models.GetOrganization(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "organizations.go", "getOrganization", err)
		return
	}
	c.JSON(http.StatusOK, org)
}
