package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/models"
)

func (a *App) createProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.OrgId = c.Param("orgId")

	product, err := models.CreateProduct(c.Request.Context(), a.db, &input)
	if err != nil {
		a.respondError(c, "products.go", "createProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (a *App) listProducts(c *gin.Context) {
	offset, limit := pagination(c)
	products, err := models.GetProductsByOrg(c.Request.Context(), a.db, c.Param("orgId"), offset, limit)
	if err != nil {
		a.respondError(c, "products.go", "listProducts", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *App) getProduct(c *gin.Context) {
	product, err := models.GetProduct(c.Request.Context(), a.db, c.Param("productId"))
	if err != nil {
		a.respondError(c, "products.go", "getProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *App) updateProduct(c *gin.Context) {
	var input models.ProductUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	product, err := models.UpdateProduct(c.Request.Context(), a.db, c.Param("productId"), &input)
	if err != nil {
		a.respondError(c, "products.go", "updateProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *App) deleteProduct(c *gin.Context) {
	if err := models.DeleteProduct(c.Request.Context(), a.db, c.Param("productId")); err != nil {
		a.respondError(c, "products.go", "deleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) adjustProductQuantity(c *gin.Context) {
	var input models.ProductAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	result, err := models.AdjustProductQuantity(c.Request.Context(), a.db, c.Param("productId"), &input)
	if err != nil {
		a.respondError(c, "products.go", "adjustProductQuantity", err)
		return
	}
	a.publishInventoryEvent(c, string(input.TxnType), result.ProductId, result.TxnId)
	c.JSON(http.StatusCreated, result)
}

func (a *App) listProductTransactions(c *gin.Context) {
	offset, limit := pagination(c)
	txns, err := models.GetProductTransactionsByProduct(c.Request.Context(), a.db, c.Param("productId"), offset, limit)
	if err != nil {
		a.respondError(c, "products.go", "listProductTransactions", err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// productBuildCost reports what one unit would cost to build right now
// from current part unit costs. Read-only; nothing is locked.
func (a *App) productBuildCost(c *gin.Context) {
	ctx := c.Request.Context()
	productId := c.Param("productId")

	unitCost, lines, err := models.BuildUnitCostForProduct(ctx, a.db, productId)
	if err != nil {
		a.respondError(c, "products.go", "productBuildCost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":      productId,
		"unit_build_cost": unitCost,
		"recipe_lines":    len(lines),
	})
}
