// Package handlers exposes the order, tag and profile operations over HTTP.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(orders OrderService, profiles ProfileService, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterOrderRoutes(r, orders)
	RegisterProfileRoutes(r, profiles)
	return r
}
