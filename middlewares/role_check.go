package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
)

// Role groups used by the router.
var (
	ManagementRoles = []models.Role{models.RoleAdmin, models.RoleOwner, models.RoleManager}
	FrontDeskRoles  = []models.Role{
		models.RoleAdmin, models.RoleOwner, models.RoleManager, models.RoleSupervisor, models.RoleSecretary,
	}
)

// RequireRoles lets the request through only for accounts holding one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userRole, ok := CurrentAccount(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("you do not have permission to access this page"))
		c.Abort()
	}
}
