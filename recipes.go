package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/models"
)

func (a *App) getRecipe(c *gin.Context) {
	lines, err := models.GetRecipeLines(c.Request.Context(), a.db, c.Param("productId"))
	if err != nil {
		a.respondError(c, "recipes.go", "getRecipe", err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// bulkUpsertRecipe updates or inserts the given lines keyed by part_id.
// Lines not mentioned stay as they are; clearing is a separate DELETE.
func (a *App) bulkUpsertRecipe(c *gin.Context) {
	var inputs []models.NewRecipeLine
	if err := c.ShouldBindJSON(&inputs); err != nil {
		badRequest(c, err)
		return
	}

	lines, err := models.BulkUpsertRecipeLines(c.Request.Context(), a.db, c.Param("productId"), inputs)
	if err != nil {
		a.respondError(c, "recipes.go", "bulkUpsertRecipe", err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (a *App) clearRecipe(c *gin.Context) {
	if err := models.DeleteAllRecipeLines(c.Request.Context(), a.db, c.Param("productId")); err != nil {
		a.respondError(c, "recipes.go", "clearRecipe", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) createRecipeLine(c *gin.Context) {
	var input models.NewRecipeLine
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	line, err := models.CreateRecipeLine(c.Request.Context(), a.db, c.Param("productId"), &input)
	if err != nil {
		a.respondError(c, "recipes.go", "createRecipeLine", err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (a *App) updateRecipeLine(c *gin.Context) {
	var input models.RecipeLineUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	line, err := models.UpdateRecipeLine(c.Request.Context(), a.db, c.Param("productId"), c.Param("partId"), &input)
	if err != nil {
		a.respondError(c, "recipes.go", "updateRecipeLine", err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (a *App) deleteRecipeLine(c *gin.Context) {
	if err := models.DeleteRecipeLine(c.Request.Context(), a.db, c.Param("productId"), c.Param("partId")); err != nil {
		a.respondError(c, "recipes.go", "deleteRecipeLine", err)
		return
	}
	c.Status(http.StatusNoContent)
}
