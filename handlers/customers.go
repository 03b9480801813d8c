package handlers

import (
	"log/slog"
	"net/http"

	"order-management-service/internal/customers"
	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newCustomer customers.NewCustomer
	if !h.bindAndValidate(c, traceId, &newCustomer) {
		return
	}

	customer, err := h.c.InsertCustomer(c.Request.Context(), newCustomer)
	if err != nil {
		slog.Error("error in creating the customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	customerID := c.Param("id")

	customer, err := h.c.GetCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("error in retrieving customer", slog.String(logkey.TraceID, traceId),
			slog.String("CustomerID", customerID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) GetCustomerByEmail(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	email := c.Param("email")

	customer, err := h.c.GetCustomerByEmail(c.Request.Context(), email)
	if err != nil {
		slog.Error("error in retrieving customer by email", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customersList, err := h.c.ListCustomers(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching customers", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, customersList)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	customerID := c.Param("id")

	var updateCustomer customers.UpdateCustomer
	if !h.bindAndValidate(c, traceId, &updateCustomer) {
		return
	}

	customer, err := h.c.UpdateCustomerByID(c.Request.Context(), customerID, updateCustomer)
	if err != nil {
		slog.Error("error in updating the customer", slog.String(logkey.TraceID, traceId),
			slog.String("CustomerID", customerID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	customerID := c.Param("id")

	err := h.c.DeleteCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("error in deleting the customer", slog.String(logkey.TraceID, traceId),
			slog.String("CustomerID", customerID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SearchCustomers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := customers.SearchFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Phone: c.Query("phone"),
	}

	customersList, err := h.c.SearchCustomers(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in searching customers", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, customersList)
}
