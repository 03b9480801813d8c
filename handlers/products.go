package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"order-management-service/internal/products"
	"order-management-service/pkg/apierror"
	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newProduct products.NewProduct
	if !h.bindAndValidate(c, traceId, &newProduct) {
		return
	}

	product, err := h.p.InsertProduct(c.Request.Context(), newProduct)
	if err != nil {
		slog.Error("error in inserting the product", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	product, err := h.p.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		slog.Error("error in retrieving product", slog.String(logkey.TraceID, traceId),
			slog.String("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productsList, err := h.p.ListProducts(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, productsList)
}

func (h *Handler) ListProductsInStock(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productsList, err := h.p.ListProductsInStock(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching in-stock products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, productsList)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	var updateProduct products.UpdateProduct
	if !h.bindAndValidate(c, traceId, &updateProduct) {
		return
	}

	product, err := h.p.UpdateProductByID(c.Request.Context(), productID, updateProduct)
	if err != nil {
		slog.Error("error in updating the product", slog.String(logkey.TraceID, traceId),
			slog.String("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	err := h.p.DeleteProductByID(c.Request.Context(), productID)
	if err != nil {
		slog.Error("error in deleting the product", slog.String(logkey.TraceID, traceId),
			slog.String("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AdjustProductStock applies the signed quantity delta from the query string
// through the inventory guard.
func (h *Handler) AdjustProductStock(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	delta, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		slog.Error("invalid quantity parameter", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.New(http.StatusBadRequest, "quantity must be an integer"))
		return
	}

	product, err := h.p.AdjustStock(c.Request.Context(), productID, delta)
	if err != nil {
		slog.Error("error in adjusting product stock", slog.String(logkey.TraceID, traceId),
			slog.String("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) SearchProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := products.SearchFilter{Name: c.Query("name")}

	if v := c.Query("minPrice"); v != "" {
		minPrice, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "minPrice must be an integer"))
			return
		}
		filter.MinPrice = &minPrice
	}
	if v := c.Query("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "maxPrice must be an integer"))
			return
		}
		filter.MaxPrice = &maxPrice
	}
	if v := c.Query("minStock"); v != "" {
		minStock, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "minStock must be an integer"))
			return
		}
		filter.MinStock = &minStock
	}

	productsList, err := h.p.SearchProducts(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in searching products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, productsList)
}
