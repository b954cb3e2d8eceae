package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the ClinicDesk API")
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetupRootRoute sets up the unauthenticated root and health routes.
func SetupRootRoute(router *gin.Engine) {
	router.GET("/", rootHandler)
	router.GET("/healthz", healthHandler)
}
