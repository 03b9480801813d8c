package handlers

import (
	"net/http"
	"os"

	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/stores/kafka"
	"order-management-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	c        *customers.Conf
	p        *products.Conf
	o        *orders.Conf
	k        *kafka.Conf // nil when event publishing is disabled
	validate *validator.Validate
}

func NewHandler(c *customers.Conf, p *products.Conf, o *orders.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		c:        c,
		p:        p,
		o:        o,
		k:        k,
		validate: validator.New(),
	}
}

func API(c *customers.Conf, p *products.Conf, o *orders.Conf, k *kafka.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	h := NewHandler(c, p, o, k)
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	customersGroup := r.Group("/customers")
	{
		customersGroup.POST("", h.CreateCustomer)
		customersGroup.GET("", h.ListCustomers)
		customersGroup.GET("/search", h.SearchCustomers)
		customersGroup.GET("/email/:email", h.GetCustomerByEmail)
		customersGroup.GET("/:id", h.GetCustomer)
		customersGroup.PUT("/:id", h.UpdateCustomer)
		customersGroup.DELETE("/:id", h.DeleteCustomer)
	}

	productsGroup := r.Group("/products")
	{
		productsGroup.POST("", h.CreateProduct)
		productsGroup.GET("", h.ListProducts)
		productsGroup.GET("/in-stock", h.ListProductsInStock)
		productsGroup.GET("/search", h.SearchProducts)
		productsGroup.GET("/:id", h.GetProduct)
		productsGroup.PUT("/:id", h.UpdateProduct)
		productsGroup.DELETE("/:id", h.DeleteProduct)
		productsGroup.PATCH("/:id/stock", h.AdjustProductStock)
	}

	ordersGroup := r.Group("/orders")
	{
		ordersGroup.POST("", h.CreateOrder)
		ordersGroup.GET("", h.ListOrders)
		ordersGroup.GET("/search", h.SearchOrders)
		ordersGroup.GET("/customer/:customerId", h.ListOrdersByCustomer)
		ordersGroup.GET("/:id", h.GetOrder)
		ordersGroup.DELETE("/:id", h.DeleteOrder)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
