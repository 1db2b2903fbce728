package public

import (
	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

func currentActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.CurrentActor(c)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "id")
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}
