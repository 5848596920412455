package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/models"
)

func (a *App) createOrder(c *gin.Context) {
	var input models.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	order, err := models.CreateOrder(c.Request.Context(), a.db, c.Param("orgId"), &input)
	if err != nil {
		a.respondError(c, "orders.go", "createOrder", err)
		return
	}
	for _, line := range order.Lines {
		a.publishInventoryEvent(c, "sale", line.ProductId, line.SaleTxnId)
	}
	c.JSON(http.StatusCreated, order)
}

func (a *App) listOrders(c *gin.Context) {
	offset, limit := pagination(c)
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
		return
	}

	orders, err := models.GetOrdersByOrg(c.Request.Context(), a.db, c.Param("orgId"), status, offset, limit)
	if err != nil {
		a.respondError(c, "orders.go", "listOrders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (a *App) getOrder(c *gin.Context) {
	order, err := models.GetOrder(c.Request.Context(), a.db, c.Param("orderId"))
	if err != nil {
		a.respondError(c, "orders.go", "getOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *App) updateOrder(c *gin.Context) {
	var input models.OrderUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	order, err := models.UpdateOrder(c.Request.Context(), a.db, c.Param("orderId"), &input)
	if err != nil {
		a.respondError(c, "orders.go", "updateOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (a *App) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := models.UpdateOrderStatus(c.Request.Context(), a.db, c.Param("orderId"), req.Status)
	if err != nil {
		a.respondError(c, "orders.go", "updateOrderStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// returnOrder cancels a shipped order. Whether the goods go back into
// sellable stock is deployment policy, not caller choice.
func (a *App) returnOrder(c *gin.Context) {
	order, err := models.ReturnOrder(c.Request.Context(), a.db, c.Param("orderId"), a.restockOnReturn)
	if err != nil {
		a.respondError(c, "orders.go", "returnOrder", err)
		return
	}
	for _, line := range order.Lines {
		a.publishInventoryEvent(c, "return", line.ProductId, line.SaleTxnId)
	}
	c.JSON(http.StatusOK, order)
}
