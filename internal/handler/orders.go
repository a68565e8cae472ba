package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/puntodeagua/internal/middleware"
	"github.com/mmeshcher/puntodeagua/internal/model"
)

type placeOrderRequest struct {
	CustomerName  string           `json:"customer_name"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	Quantities    model.Quantities `json:"quantities"`
	PaymentMethod string           `json:"payment_method"`
	Bank          string           `json:"bank"`
	Reference     string           `json:"reference"`
	Total         *decimal.Decimal `json:"total"`
}

// PlaceOrder оформляет заказ от имени текущего пользователя.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID, model.NewOrder{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Address:       req.Address,
		Quantities:    req.Quantities,
		PaymentMethod: req.PaymentMethod,
		Bank:          req.Bank,
		Reference:     req.Reference,
		Total:         req.Total,
	})
	if err != nil {
		h.writeError(w, err, "place order error", zap.Int64("userID", userID))
		return
	}

	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

// GetHistory возвращает заказы текущего пользователя.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	orders, err := h.service.History(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "get history error", zap.Int64("userID", userID))
		return
	}

	h.writeOrders(w, orders)
}

// GetAccountHistory возвращает заказы произвольной учётной записи.
func (h *Handler) GetAccountHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	orders, err := h.service.History(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err, "get account history error", zap.Int64("accountID", accountID))
		return
	}

	h.writeOrders(w, orders)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		badRequest(w)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err, "get order error", zap.Int64("orderID", orderID))
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

type changeStatusRequest struct {
	Status  string `json:"status"`
	Version *int64 `json:"version"`
}

// ChangeStatus переводит заказ в новый статус.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		badRequest(w)
		return
	}

	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	order, err := h.service.ChangeStatus(r.Context(), orderID, req.Status, req.Version)
	if err != nil {
		h.writeError(w, err, "change order status error", zap.Int64("orderID", orderID))
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	h.logger.Info("order status changed",
		zap.Int64("orderID", order.ID),
		zap.String("status", string(order.Status)),
		zap.Int64("version", order.Version),
		zap.Int64("userID", userID),
	)

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

// PendingOrders возвращает очередь новых заказов.
func (h *Handler) PendingOrders(w http.ResponseWriter, r *http.Request) {
	h.serveQueue(w, r, "pending", h.service.PendingQueue)
}

// InFlightOrders возвращает принятые, но ещё не доставленные заказы.
func (h *Handler) InFlightOrders(w http.ResponseWriter, r *http.Request) {
	h.serveQueue(w, r, "in-flight", h.service.InFlightQueue)
}

// DeliveredOrders возвращает доставленные заказы.
func (h *Handler) DeliveredOrders(w http.ResponseWriter, r *http.Request) {
	h.serveQueue(w, r, "delivered", h.service.CompletedQueue)
}

func (h *Handler) serveQueue(w http.ResponseWriter, r *http.Request, name string, list func(context.Context) ([]model.Order, error)) {
	orders, err := list(r.Context())
	if err != nil {
		h.writeError(w, err, "get order queue error", zap.String("queue", name))
		return
	}

	h.writeOrders(w, orders)
}

func (h *Handler) writeOrders(w http.ResponseWriter, orders []model.Order) {
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newOrdersResponse(orders))
}
