package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

// OrgScope resolves the :orgId path param, rejects non-members, and
// puts the org id on the request context so the tenant guard scopes
// every query that follows.
func OrgScope(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgId := c.Param("orgId")
		if orgId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing org id"})
			c.Abort()
			return
		}

		claim := CtxValue(c.Request.Context())
		if claim == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		member, err := models.IsOrgMember(c.Request.Context(), db, orgId, claim.UserId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
			c.Abort()
			return
		}
		if !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this organization"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.SetOrgIdInContext(c.Request.Context(), orgId))
		c.Next()
	}
}
