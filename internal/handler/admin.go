package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/service"
)

// ListUsers возвращает учётные записи, при наличии параметра role только с этой ролью.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role *model.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		parsed, err := model.ParseRole(raw)
		if err != nil {
			h.writeError(w, err, "list users error")
			return
		}
		role = &parsed
	}

	accounts, err := h.service.ListAccounts(r.Context(), role)
	if err != nil {
		h.writeError(w, err, "list users error")
		return
	}

	if len(accounts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newAccountsResponse(accounts))
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

// CreateUser создаёт учётную запись с произвольной ролью.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	role := model.RoleCustomer
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			h.writeError(w, err, "create user error")
			return
		}
		role = parsed
	}

	account, err := h.service.CreateAccount(r.Context(), req.Email, req.Password, req.profile(), role)
	if err != nil {
		h.writeError(w, err, "create user error")
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// GetUser возвращает учётную запись по идентификатору.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err, "get user error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Role     *string `json:"role"`
}

// UpdateUser изменяет переданные поля учётной записи, включая e-mail и пароль.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	u := model.AccountUpdate{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			h.writeError(w, err, "update user error")
			return
		}
		u.Role = &role
	}

	account, err := h.service.UpdateAccount(r.Context(), accountID, u)
	if err != nil {
		h.writeError(w, err, "update user error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// DeleteUser удаляет учётную запись. Заказы пользователя сохраняются.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		h.writeError(w, err, "delete user error", zap.Int64("accountID", accountID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setStatusRequest struct {
	IsSuspended *bool `json:"is_suspended"`
}

// SetUserStatus блокирует или разблокирует учётную запись.
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil || req.IsSuspended == nil {
		badRequest(w)
		return
	}

	status := model.AccountActive
	if *req.IsSuspended {
		status = model.AccountSuspended
	}

	account, err := h.service.SetStatus(r.Context(), accountID, status)
	if err != nil {
		h.writeError(w, err, "set user status error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole меняет роль учётной записи.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w)
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, err, "set user role error")
		return
	}

	account, err := h.service.SetRole(r.Context(), accountID, role)
	if err != nil {
		h.writeError(w, err, "set user role error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// ListOrders возвращает заказы по статусу и диапазону дат.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orders, err := h.service.ListFiltered(r.Context(), service.OrderFilter{
		Status:   q.Get("status"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	})
	if err != nil {
		h.writeError(w, err, "list orders error")
		return
	}

	h.writeOrders(w, orders)
}

// SalesSummary возвращает выручку и число проданных бутылей за период.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err, "sales summary error")
		return
	}

	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}
