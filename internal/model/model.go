// Package model содержит доменные сущности сервиса доставки воды.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль учётной записи.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleDistributor Role = "distributor"
	RoleAdmin       Role = "admin"
)

// ParseRole разбирает роль из строки без учёта регистра.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleDistributor, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
	}
}

// AccountStatus описывает состояние учётной записи.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// ParseAccountStatus разбирает состояние учётной записи из строки без учёта регистра.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case AccountActive, AccountSuspended:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown account status %q", ErrInvalidArgument, s)
	}
}

// Profile содержит редактируемые данные владельца учётной записи.
type Profile struct {
	Name    string
	Surname string
	Phone   string
	Address string
}

// Account представляет зарегистрированного пользователя.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Profile
	Role      Role
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Suspended сообщает, заблокирована ли учётная запись.
func (a *Account) Suspended() bool {
	return a.Status == AccountSuspended
}

// AccountUpdate содержит частичное изменение учётной записи: nil-поля не меняются.
type AccountUpdate struct {
	Email    *string
	Password *string
	Name     *string
	Surname  *string
	Phone    *string
	Address  *string
	Role     *Role
	Status   *AccountStatus
}

// Empty сообщает, что ни одно поле не задано.
func (u AccountUpdate) Empty() bool {
	return u.Email == nil && u.Password == nil && u.Name == nil && u.Surname == nil &&
		u.Phone == nil && u.Address == nil && u.Role == nil && u.Status == nil
}

// AccountChanges описывает изменения учётной записи в том виде, в котором их сохраняет хранилище.
type AccountChanges struct {
	Email        *string
	PasswordHash []byte
	Name         *string
	Surname      *string
	Phone        *string
	Address      *string
	Role         *Role
	Status       *AccountStatus
}

// MaxQuantity задаёт наибольшее количество бутылей одного размера в заказе.
const MaxQuantity = 10000

// MaxOrderTotal задаёт наибольшую допустимую итоговую сумму заказа в USD.
var MaxOrderTotal = decimal.New(1_000_000_000, 0)

// Quantities содержит количество бутылей по размерам тары.
type Quantities struct {
	Large18L  int `json:"18L"`
	Medium12L int `json:"12L"`
	Small5L   int `json:"5L"`
}

// Total возвращает общее число бутылей.
func (q Quantities) Total() int {
	return q.Large18L + q.Medium12L + q.Small5L
}

// NewOrder содержит данные, которые клиент передаёт при оформлении заказа.
type NewOrder struct {
	CustomerName  string
	Phone         string
	Address       string
	Quantities    Quantities
	PaymentMethod string
	Bank          string
	Reference     string
	Total         *decimal.Decimal
}

// Order описывает заказ на доставку бутилированной воды.
type Order struct {
	ID            int64
	AccountID     int64
	CustomerName  string
	Phone         string
	Address       string
	Quantities    Quantities
	PaymentMethod string
	Bank          string
	Reference     string
	Total         decimal.Decimal
	Status        OrderStatus
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SalesSummary содержит агрегированную выручку и число проданных бутылей за период.
type SalesSummary struct {
	Period    Period
	Revenue   decimal.Decimal
	Large18L  int64
	Medium12L int64
	Small5L   int64
}
