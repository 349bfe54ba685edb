package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
)

// health check endpoint
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// root endpoint
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "LocalTrip membership API is running",
	})
}
