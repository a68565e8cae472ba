package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/puntodeagua/internal/middleware"
	"github.com/mmeshcher/puntodeagua/internal/model"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (req registerRequest) profile() model.Profile {
	return model.Profile{
		Name:    req.Name,
		Surname: req.Surname,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового клиента.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	account, err := h.service.Register(r.Context(), req.Email, req.Password, req.profile())
	if err != nil {
		h.writeError(w, err, "register account error")
		return
	}

	if !h.startSession(w, account) {
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		badRequest(w)
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err, "login error")
		return
	}

	if !h.startSession(w, account) {
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *Handler) startSession(w http.ResponseWriter, a *model.Account) bool {
	token, err := h.authMiddleware.SetAuthCookie(w, a.ID, a.Role)
	if err != nil {
		h.logger.Error("issue token error", zap.Error(err), zap.Int64("userID", a.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Authorization", "Bearer "+token)
	return true
}

// GetProfile возвращает учётную запись текущего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "get profile error", zap.Int64("userID", userID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

type profileRequest struct {
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateProfile меняет телефон и адрес текущего пользователя. Остальные поля меняет только администратор.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w)
		return
	}

	account, err := h.service.UpdateAccount(r.Context(), userID, model.AccountUpdate{
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.writeError(w, err, "update profile error", zap.Int64("userID", userID))
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}
