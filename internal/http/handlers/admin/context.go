package admin

import (
	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

func getStaffID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "staff_id", "error.unauthorized", "error.internal")
}

func currentActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.CurrentActor(c)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "id")
}

func isSuperStaff(c *gin.Context) bool {
	if value, exists := c.Get("staff_is_super"); exists {
		if flag, ok := value.(bool); ok {
			return flag
		}
	}
	return false
}
