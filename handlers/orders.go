package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"order-management-service/internal/orders"
	"order-management-service/internal/stores/kafka"
	"order-management-service/pkg/apierror"
	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newOrder orders.NewOrder
	if !h.bindAndValidate(c, traceId, &newOrder) {
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), newOrder)
	if err != nil {
		slog.Error("error in creating the order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	if h.k != nil {
		go h.produceOrderEvent(traceId, kafka.TopicOrderPlaced, order.ID, kafka.OrderPlacedEvent{
			OrderId:     order.ID,
			CustomerId:  order.CustomerID,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		})
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("error in retrieving order", slog.String(logkey.TraceID, traceId),
			slog.String("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ordersList, err := h.o.ListOrders(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, ordersList)
}

func (h *Handler) ListOrdersByCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	customerID := c.Param("customerId")

	ordersList, err := h.o.ListOrdersByCustomerID(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("error in fetching customer orders", slog.String(logkey.TraceID, traceId),
			slog.String("CustomerID", customerID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, ordersList)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	err := h.o.DeleteOrderByID(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("error in deleting the order", slog.String(logkey.TraceID, traceId),
			slog.String("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	if h.k != nil {
		go h.produceOrderEvent(traceId, kafka.TopicOrderDeleted, orderID, kafka.OrderDeletedEvent{
			OrderId:   orderID,
			DeletedAt: time.Now().UTC(),
		})
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SearchOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := orders.SearchFilter{
		CustomerName: c.Query("customerName"),
		CustomerID:   c.Query("customerId"),
	}

	if v := c.Query("startDate"); v != "" {
		startDate, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "startDate must be RFC3339"))
			return
		}
		filter.StartDate = &startDate
	}
	if v := c.Query("endDate"); v != "" {
		endDate, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "endDate must be RFC3339"))
			return
		}
		filter.EndDate = &endDate
	}
	if v := c.Query("minAmount"); v != "" {
		minAmount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "minAmount must be an integer"))
			return
		}
		filter.MinAmount = &minAmount
	}
	if v := c.Query("maxAmount"); v != "" {
		maxAmount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.New(http.StatusBadRequest, "maxAmount must be an integer"))
			return
		}
		filter.MaxAmount = &maxAmount
	}

	ordersList, err := h.o.SearchOrders(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in searching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, ordersList)
}

// produceOrderEvent publishes an order lifecycle event. Event delivery is
// best effort; a broker failure never fails the request that caused it.
func (h *Handler) produceOrderEvent(traceId, topic, orderID string, event any) {
	jsonData, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal order event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return
	}

	if err := h.k.ProduceMessage(topic, []byte(orderID), jsonData); err != nil {
		slog.Error("failed to produce order event", slog.String(logkey.TraceID, traceId),
			slog.String("Topic", topic), slog.String(logkey.ERROR, err.Error()))
		return
	}
	slog.Info("order event produced", slog.String(logkey.TraceID, traceId),
		slog.String("Topic", topic), slog.String("OrderID", orderID))
}
