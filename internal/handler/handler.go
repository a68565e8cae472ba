// Package handler содержит HTTP-обработчики API сервиса доставки воды.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/puntodeagua/internal/middleware"
	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, email, password string, p model.Profile) (*model.Account, error)
	Authenticate(ctx context.Context, email, password string) (*model.Account, error)
	CreateAccount(ctx context.Context, email, password string, p model.Profile, role model.Role) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	UpdateAccount(ctx context.Context, id int64, u model.AccountUpdate) (*model.Account, error)
	SetRole(ctx context.Context, id int64, role model.Role) (*model.Account, error)
	SetStatus(ctx context.Context, id int64, status model.AccountStatus) (*model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context, role *model.Role) ([]model.Account, error)

	PlaceOrder(ctx context.Context, accountID int64, o model.NewOrder) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	History(ctx context.Context, accountID int64) ([]model.Order, error)
	PendingQueue(ctx context.Context) ([]model.Order, error)
	InFlightQueue(ctx context.Context) ([]model.Order, error)
	CompletedQueue(ctx context.Context) ([]model.Order, error)
	ListFiltered(ctx context.Context, f service.OrderFilter) ([]model.Order, error)
	ChangeStatus(ctx context.Context, id int64, status string, expectedVersion *int64) (*model.Order, error)

	Summarize(ctx context.Context, period string) (*model.SalesSummary, error)
}

// Handler реализует HTTP-обработчики API сервиса доставки воды.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Error("ping error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateIdentity),
		errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrAccountSuspended):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает статусом, соответствующим ошибке. Внутренние ошибки
// пишутся в журнал, клиент получает только текст статуса.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: http.StatusText(http.StatusBadRequest)})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
