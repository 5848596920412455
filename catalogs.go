package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/models"
)

// Catalogs change rarely and are read on every form load, so the list
// endpoints go through Redis. Writes invalidate; a cold or down Redis
// just means a DB read.

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func partTypesCacheKey(orgId string) string    { return "partTypes:" + orgId }
func productTypesCacheKey(orgId string) string { return "productTypes:" + orgId }

func (a *App) createPartType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	orgId := c.Param("orgId")
	partType, err := models.CreatePartType(c.Request.Context(), a.db, orgId, req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createPartType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, partTypesCacheKey(orgId))
	c.JSON(http.StatusCreated, partType)
}

func (a *App) listPartTypes(c *gin.Context) {
	orgId := c.Param("orgId")

	var cached []models.PartType
	if hit, err := config.GetRedisObject(c.Request.Context(), a.redis, partTypesCacheKey(orgId), &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	types, err := models.GetPartTypesByOrg(c.Request.Context(), a.db, orgId)
	if err != nil {
		a.respondError(c, "catalogs.go", "listPartTypes", err)
		return
	}
	_ = config.SetRedisObject(c.Request.Context(), a.redis, partTypesCacheKey(orgId), types)
	c.JSON(http.StatusOK, types)
}

func (a *App) renamePartType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	partType, err := models.RenamePartType(c.Request.Context(), a.db, c.Param("typeId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "renamePartType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, partTypesCacheKey(c.Param("orgId")))
	c.JSON(http.StatusOK, partType)
}

func (a *App) deletePartType(c *gin.Context) {
	if err := models.DeletePartType(c.Request.Context(), a.db, c.Param("typeId")); err != nil {
		a.respondError(c, "catalogs.go", "deletePartType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, partTypesCacheKey(c.Param("orgId")))
	c.Status(http.StatusNoContent)
}

func (a *App) createPartSubtype(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subtype, err := models.CreatePartSubtype(c.Request.Context(), a.db, c.Param("typeId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createPartSubtype", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, partTypesCacheKey(c.Param("orgId")))
	c.JSON(http.StatusCreated, subtype)
}

func (a *App) deletePartSubtype(c *gin.Context) {
	if err := models.DeletePartSubtype(c.Request.Context(), a.db, c.Param("subtypeId")); err != nil {
		a.respondError(c, "catalogs.go", "deletePartSubtype", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, partTypesCacheKey(c.Param("orgId")))
	c.Status(http.StatusNoContent)
}

func (a *App) createProductType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	orgId := c.Param("orgId")
	productType, err := models.CreateProductType(c.Request.Context(), a.db, orgId, req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createProductType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, productTypesCacheKey(orgId))
	c.JSON(http.StatusCreated, productType)
}

func (a *App) listProductTypes(c *gin.Context) {
	orgId := c.Param("orgId")

	var cached []models.ProductType
	if hit, err := config.GetRedisObject(c.Request.Context(), a.redis, productTypesCacheKey(orgId), &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	types, err := models.GetProductTypesByOrg(c.Request.Context(), a.db, orgId)
	if err != nil {
		a.respondError(c, "catalogs.go", "listProductTypes", err)
		return
	}
	_ = config.SetRedisObject(c.Request.Context(), a.redis, productTypesCacheKey(orgId), types)
	c.JSON(http.StatusOK, types)
}

func (a *App) renameProductType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	productType, err := models.RenameProductType(c.Request.Context(), a.db, c.Param("typeId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "renameProductType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, productTypesCacheKey(c.Param("orgId")))
	c.JSON(http.StatusOK, productType)
}

func (a *App) deleteProductType(c *gin.Context) {
	if err := models.DeleteProductType(c.Request.Context(), a.db, c.Param("typeId")); err != nil {
		a.respondError(c, "catalogs.go", "deleteProductType", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, productTypesCacheKey(c.Param("orgId")))
	c.Status(http.StatusNoContent)
}

func (a *App) createProductSubtype(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subtype, err := models.CreateProductSubtype(c.Request.Context(), a.db, c.Param("typeId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createProductSubtype", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, productTypesCacheKey(c.Param("orgId")))
	c.JSON(http.StatusCreated, subtype)
}

func (a *App) deleteProductSubtype(c *gin.Context) {
	if err := models.DeleteProductSubtype(c.Request.Context(), a.db, c.Param("subtypeId")); err != nil {
		a.respondError(c, "catalogs.go", "deleteProductSubtype", err)
		return
	}
	config.DeleteRedisKeys(c.Request.Context(), a.redis, productTypesCacheKey(c.Param("orgId")))
	c.Status(http.StatusNoContent)
}

func (a *App) createPartStatusLabel(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	label, err := models.CreatePartStatusLabel(c.Request.Context(), a.db, c.Param("orgId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createPartStatusLabel", err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (a *App) listPartStatusLabels(c *gin.Context) {
	labels, err := models.GetPartStatusLabels(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "catalogs.go", "listPartStatusLabels", err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (a *App) deletePartStatusLabel(c *gin.Context) {
	if err := models.DeletePartStatusLabel(c.Request.Context(), a.db, c.Param("labelId")); err != nil {
		a.respondError(c, "catalogs.go", "deletePartStatusLabel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) createProductStatusLabel(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	label, err := models.CreateProductStatusLabel(c.Request.Context(), a.db, c.Param("orgId"), req.Name)
	if err != nil {
		a.respondError(c, "catalogs.go", "createProductStatusLabel", err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (a *App) listProductStatusLabels(c *gin.Context) {
	labels, err := models.GetProductStatusLabels(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "catalogs.go", "listProductStatusLabels", err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (a *App) deleteProductStatusLabel(c *gin.Context) {
	if err := models.DeleteProductStatusLabel(c.Request.Context(), a.db, c.Param("labelId")); err != nil {
		a.respondError(c, "catalogs.go", "deleteProductStatusLabel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) createPlatform(c *gin.Context) {
	var input models.NewPlatform
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.OrgId = c.Param("orgId")

	platform, err := models.CreatePlatform(c.Request.Context(), a.db, &input)
	if err != nil {
		a.respondError(c, "catalogs.go", "createPlatform", err)
		return
	}
	c.JSON(http.StatusCreated, platform)
}

func (a *App) listPlatforms(c *gin.Context) {
	platforms, err := models.GetPlatformsByOrg(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "catalogs.go", "listPlatforms", err)
		return
	}
	c.JSON(http.StatusOK, platforms)
}

func (a *App) deletePlatform(c *gin.Context) {
	if err := models.DeletePlatform(c.Request.Context(), a.db, c.Param("platformId")); err != nil {
		a.respondError(c, "catalogs.go", "deletePlatform", err)
		return
	}
	c.Status(http.StatusNoContent)
}
