package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Every
// handler funnels failures through here so the mapping stays in one place.
func (a *App) respondError(c *gin.Context, module string, funcName string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrNoRecipe),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrDuplicate):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrCrossTenantReference):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		config.LogError(a.logger, module, funcName, c.FullPath(), nil, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
