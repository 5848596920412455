package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/craftflowhq/craftflow_backend/models"
)

// buildProduct runs the build coordinator. A best-effort Redis lock per
// product keeps concurrent builds from fighting over the same rows;
// correctness never depends on it, the DB row locks do that.
func (a *App) buildProduct(c *gin.Context) {
	ctx := c.Request.Context()
	productId := c.Param("productId")

	var req models.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ProductId = productId

	if a.locker != nil {
		lock, err := a.locker.Obtain(ctx, fmt.Sprintf("lock:build:%s", productId), 30*time.Second, nil)
		if err == nil {
			defer func() {
				if releaseErr := lock.Release(ctx); releaseErr != nil && releaseErr != redislock.ErrLockNotHeld {
					a.logger.WithFields(logrus.Fields{
						"field":      "buildProduct",
						"product_id": productId,
					}).Warn("failed to release redis lock: " + releaseErr.Error())
				}
			}()
		} else if err != redislock.ErrNotObtained {
			a.logger.WithFields(logrus.Fields{
				"field":      "buildProduct",
				"product_id": productId,
			}).Warn("error obtaining redis lock; proceeding without it: " + err.Error())
		}
	}

	result, err := models.BuildProduct(ctx, a.db, &req)
	if err != nil {
		a.respondError(c, "production.go", "buildProduct", err)
		return
	}

	a.publishInventoryEvent(c, "build_product", result.ProductId, result.TxnId)
	c.JSON(http.StatusCreated, result)
}
