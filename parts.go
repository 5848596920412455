package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// publishInventoryEvent emits a best-effort notification after a commit.
func (a *App) publishInventoryEvent(c *gin.Context, eventType, entityId, txnId string) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	orgId, _ := utils.GetOrgIdFromContext(c.Request.Context())
	a.publisher.Publish(c.Request.Context(), config.InventoryEvent{
		OrgId:         orgId,
		EventType:     eventType,
		EntityId:      entityId,
		TxnId:         txnId,
		OccurredAt:    time.Now().UTC(),
		CorrelationId: cid,
	})
}

func (a *App) createPart(c *gin.Context) {
	var input models.NewPart
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.OrgId = c.Param("orgId")

	part, err := models.CreatePart(c.Request.Context(), a.db, &input)
	if err != nil {
		a.respondError(c, "parts.go", "createPart", err)
		return
	}
	c.JSON(http.StatusCreated, part)
}

func (a *App) listParts(c *gin.Context) {
	offset, limit := pagination(c)
	parts, err := models.GetPartsByOrg(c.Request.Context(), a.db, c.Param("orgId"), offset, limit)
	if err != nil {
		a.respondError(c, "parts.go", "listParts", err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (a *App) getPart(c *gin.Context) {
	part, err := models.GetPart(c.Request.Context(), a.db, c.Param("partId"))
	if err != nil {
		a.respondError(c, "parts.go", "getPart", err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (a *App) updatePart(c *gin.Context) {
	var input models.PartUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	part, err := models.UpdatePart(c.Request.Context(), a.db, c.Param("partId"), &input)
	if err != nil {
		a.respondError(c, "parts.go", "updatePart", err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (a *App) deletePart(c *gin.Context) {
	if err := models.DeletePart(c.Request.Context(), a.db, c.Param("partId")); err != nil {
		a.respondError(c, "parts.go", "deletePart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) adjustPartStock(c *gin.Context) {
	var input models.PartAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	result, err := models.AdjustPartStock(c.Request.Context(), a.db, c.Param("partId"), &input)
	if err != nil {
		a.respondError(c, "parts.go", "adjustPartStock", err)
		return
	}
	a.publishInventoryEvent(c, string(input.TxnType), result.PartId, result.TxnId)
	c.JSON(http.StatusCreated, result)
}

func (a *App) listPartTransactions(c *gin.Context) {
	offset, limit := pagination(c)
	txns, err := models.GetPartTransactionsByPart(c.Request.Context(), a.db, c.Param("partId"), offset, limit)
	if err != nil {
		a.respondError(c, "parts.go", "listPartTransactions", err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a *App) fifoCost(c *gin.Context) {
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
		return
	}

	estimate, err := models.ComputeFifoCost(c.Request.Context(), a.db, c.Param("partId"), quantity)
	if err != nil {
		a.respondError(c, "parts.go", "fifoCost", err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}
