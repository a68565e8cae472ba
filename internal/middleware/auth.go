// Package middleware содержит HTTP middleware сервиса доставки воды.
package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

const (
	authCookieName  = "auth_token"
	defaultTokenTTL = 24 * time.Hour
	tokenIssuer     = "puntodeagua"
)

var errTokenInvalid = errors.New("token is invalid")

// Claims описывает содержимое токена сессии.
type Claims struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountLookup возвращает текущее состояние учётной записи владельца токена.
type AccountLookup interface {
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
}

// AuthMiddleware выполняет проверку аутентификации по подписанному токену из cookie или заголовка Authorization.
// Роль и статус берутся из хранилища при каждом запросе, а не из токена.
type AuthMiddleware struct {
	secretKey []byte
	ttl       time.Duration
	accounts  AccountLookup
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом и временем жизни токена.
// Пустой секрет заменяется случайным, тогда токены не переживают перезапуск.
func NewAuthMiddleware(secret string, ttl time.Duration, accounts AccountLookup) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &AuthMiddleware{
		secretKey: key,
		ttl:       ttl,
		accounts:  accounts,
	}
}

// Middleware проверяет токен и добавляет идентификатор и роль пользователя в контекст запроса.
// Удалённая учётная запись получает 401, заблокированная 403.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, err := a.ParseToken(token)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		account, err := a.accounts.GetAccount(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if account.Suspended() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), account.ID, account.Role)))
	})
}

// RequireRole пропускает запрос, только если роль пользователя входит в roles.
// Должен стоять после Middleware.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, role) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueToken подписывает токен сессии для пользователя.
func (a *AuthMiddleware) IssueToken(userID int64, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

// ParseToken проверяет подпись и срок действия токена.
func (a *AuthMiddleware) ParseToken(value string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errTokenInvalid
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// SetAuthCookie выпускает токен и устанавливает cookie авторизации. Токен возвращается для заголовка Authorization.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, userID int64, role model.Role) (string, error) {
	token, err := a.IssueToken(userID, role)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(authCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetRoleFromContext извлекает роль пользователя из контекста запроса.
func GetRoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(roleKey).(model.Role)
	return role, ok
}

// WithIdentity возвращает контекст с идентификатором и ролью пользователя.
func WithIdentity(ctx context.Context, userID int64, role model.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}
