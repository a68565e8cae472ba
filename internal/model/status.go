package model

import (
	"fmt"
	"strings"
)

// OrderStatus описывает этап жизненного цикла заказа.
//
//	pending ──> accepted ──> in_process ──> in_transit ──> delivered
//	   │           │             │              │
//	   └───────────┴─────────────┴──────────────┴──> rejected
//
// delivered и rejected являются конечными.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusInProcess OrderStatus = "in_process"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRejected  OrderStatus = "rejected"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusAccepted, OrderStatusRejected},
	OrderStatusAccepted:  {OrderStatusInProcess, OrderStatusRejected},
	OrderStatusInProcess: {OrderStatusInTransit, OrderStatusRejected},
	OrderStatusInTransit: {OrderStatusDelivered, OrderStatusRejected},
	OrderStatusDelivered: nil,
	OrderStatusRejected:  nil,
}

// InFlightStatuses содержит статусы принятых, но ещё не доставленных заказов.
var InFlightStatuses = []OrderStatus{OrderStatusAccepted, OrderStatusInProcess, OrderStatusInTransit}

// RevenueStatuses содержит статусы, учитываемые в отчётах о выручке.
var RevenueStatuses = []OrderStatus{OrderStatusDelivered, OrderStatusAccepted}

// ParseOrderStatus разбирает статус без учёта регистра. Пробелы и дефисы считаются подчёркиваниями.
func ParseOrderStatus(s string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	st := OrderStatus(normalized)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid сообщает, входит ли статус в допустимый набор.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransitionTo проверяет переход по графу жизненного цикла.
// Повторная установка текущего статуса всегда разрешена.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionMode задаёт строгость проверки переходов.
type TransitionMode string

const (
	// TransitionStrict разрешает только переходы по графу жизненного цикла.
	TransitionStrict TransitionMode = "strict"
	// TransitionPermissive разрешает установку любого допустимого статуса.
	TransitionPermissive TransitionMode = "permissive"
)

// ParseTransitionMode разбирает режим проверки переходов.
func ParseTransitionMode(s string) (TransitionMode, error) {
	switch m := TransitionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case TransitionStrict, TransitionPermissive:
		return m, nil
	case "":
		return TransitionStrict, nil
	default:
		return "", fmt.Errorf("unknown transition mode %q", s)
	}
}

// Transition проверяет, можно ли перевести заказ из from в to в данном режиме.
func (m TransitionMode) Transition(from, to OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if m == TransitionPermissive || from.CanTransitionTo(to) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
