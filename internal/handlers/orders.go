package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"demo/interview/internal/model"
)

// OrderService is what the order routes need from the service layer.
type OrderService interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersInRange(ctx context.Context, startDate, embargoDate string) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
	CreateOrder(ctx context.Context, in model.CreateOrderInput) (model.Order, error)
	DeactivateOrder(ctx context.Context, id string) (model.Order, error)
	ListTags(ctx context.Context) ([]model.OrderTag, error)
	CreateTag(ctx context.Context, in model.CreateTagInput) (model.OrderTag, error)
}

func RegisterOrderRoutes(r gin.IRouter, svc OrderService) {
	g := r.Group("/orders")
	g.GET("", listOrders(svc))
	g.POST("", createOrder(svc))
	g.GET("/tags", listTags(svc))
	g.POST("/tags", createTag(svc))
	g.GET("/:id", getOrder(svc))
	g.PATCH("/:id/deactivate", deactivateOrder(svc))
}

// listOrders serves the plain listing, or the date-range query when both
// start_date and embargo_date are given.
func listOrders(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, hasStart := c.GetQuery("start_date")
		embargo, hasEmbargo := c.GetQuery("embargo_date")

		var (
			orders []model.Order
			err    error
		)
		switch {
		case hasStart && hasEmbargo:
			orders, err = svc.ListOrdersInRange(c.Request.Context(), start, embargo)
		case hasStart || hasEmbargo:
			writeError(c, http.StatusBadRequest, codeMissingDateBound,
				"start_date and embargo_date must be given together")
			return
		default:
			orders, err = svc.ListOrders(c.Request.Context())
		}
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func createOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in model.CreateOrderInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}
		o, err := svc.CreateOrder(c.Request.Context(), in)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.Header("Location", "/orders/"+o.ID)
		c.JSON(http.StatusCreated, o)
	}
}

func getOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func deactivateOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.DeactivateOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func listTags(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := svc.ListTags(c.Request.Context())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

func createTag(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in model.CreateTagInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}
		t, err := svc.CreateTag(c.Request.Context(), in)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}
