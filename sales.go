package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/models"
)

func (a *App) recordSale(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	sale, err := models.RecordSale(c.Request.Context(), a.db, &input)
	if err != nil {
		a.respondError(c, "sales.go", "recordSale", err)
		return
	}
	a.publishInventoryEvent(c, "sale", sale.ProductId, sale.TxnId)
	c.JSON(http.StatusCreated, sale)
}

func (a *App) listSales(c *gin.Context) {
	offset, limit := pagination(c)
	sales, err := models.GetSalesByOrg(c.Request.Context(), a.db, c.Param("orgId"), offset, limit)
	if err != nil {
		a.respondError(c, "sales.go", "listSales", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (a *App) getSale(c *gin.Context) {
	sale, err := models.GetSale(c.Request.Context(), a.db, c.Param("txnId"))
	if err != nil {
		a.respondError(c, "sales.go", "getSale", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (a *App) listProductSales(c *gin.Context) {
	sales, err := models.GetSalesByProduct(c.Request.Context(), a.db, c.Param("productId"))
	if err != nil {
		a.respondError(c, "sales.go", "listProductSales", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}
