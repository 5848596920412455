package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/models"
)

func parseProfitQuery(c *gin.Context) (*models.ProfitQuery, error) {
	query := &models.ProfitQuery{}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("from must be YYYY-MM-DD")
		}
		query.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("to must be YYYY-MM-DD")
		}
		// Exclusive upper bound: include the whole "to" day.
		t = t.AddDate(0, 0, 1)
		query.To = &t
	}
	return query, nil
}

func (a *App) profitSummary(c *gin.Context) {
	query, err := parseProfitQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx, span := a.tracer.Start(c.Request.Context(), "profitSummary")
	defer span.End()

	summaries, err := models.GetProductProfitSummaries(ctx, a.db, c.Param("orgId"), query)
	if err != nil {
		a.respondError(c, "analytics.go", "profitSummary", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (a *App) exportProfitReport(c *gin.Context) {
	query, err := parseProfitQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	summaries, err := models.GetProductProfitSummaries(c.Request.Context(), a.db, c.Param("orgId"), query)
	if err != nil {
		a.respondError(c, "analytics.go", "exportProfitReport", err)
		return
	}

	f, err := models.ExportProfitReport(summaries)
	if err != nil {
		a.respondError(c, "analytics.go", "exportProfitReport", err)
		return
	}

	filename := fmt.Sprintf("profit-report-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		a.logger.Error("profit report write failed: " + err.Error())
	}
}

func (a *App) lowStockAlerts(c *gin.Context) {
	alerts, err := models.GetLowStockAlerts(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "analytics.go", "lowStockAlerts", err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (a *App) inventoryDrift(c *gin.Context) {
	drifts, err := models.FindInventoryDrift(c.Request.Context(), a.db, c.Param("orgId"))
	if err != nil {
		a.respondError(c, "analytics.go", "inventoryDrift", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(drifts), "drifts": drifts})
}
