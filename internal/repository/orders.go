package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

const orderColumns = `id, account_id, customer_name, phone, address, qty_18l, qty_12l, qty_5l,
	payment_method, COALESCE(bank, ''), COALESCE(reference, ''), total_cents, status, version, created_at, updated_at`

// OrderQuery описывает условия выборки заказов. Пустые поля не ограничивают выборку.
type OrderQuery struct {
	AccountID *int64
	Statuses  []model.OrderStatus
	// From задаёт включительную нижнюю границу created_at.
	From *time.Time
	// Until задаёт исключающую верхнюю границу created_at.
	Until *time.Time
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// toCents переводит сумму в центы. Значения вне диапазона int64 отклоняются.
func toCents(d decimal.Decimal) (int64, error) {
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: amount %s out of range", model.ErrValidation, d.String())
	}
	return cents.IntPart(), nil
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		cents  int64
		status string
	)
	err := row.Scan(&o.ID, &o.AccountID, &o.CustomerName, &o.Phone, &o.Address,
		&o.Quantities.Large18L, &o.Quantities.Medium12L, &o.Quantities.Small5L,
		&o.PaymentMethod, &o.Bank, &o.Reference, &cents, &status, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Total = fromCents(cents)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func statusStrings(statuses []model.OrderStatus) []string {
	res := make([]string, 0, len(statuses))
	for _, s := range statuses {
		res = append(res, string(s))
	}
	return res
}

// CreateOrder сохраняет заказ в статусе pending и возвращает полную запись.
func (r *PostgresRepository) CreateOrder(ctx context.Context, accountID int64, o model.NewOrder) (*model.Order, error) {
	var total decimal.Decimal
	if o.Total != nil {
		total = *o.Total
	}
	cents, err := toCents(total)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO orders (account_id, customer_name, phone, address, qty_18l, qty_12l, qty_5l,
		                     payment_method, bank, reference, total_cents, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12)
		 RETURNING `+orderColumns,
		accountID, o.CustomerName, o.Phone, o.Address,
		o.Quantities.Large18L, o.Quantities.Medium12L, o.Quantities.Small5L,
		o.PaymentMethod, o.Bank, o.Reference, cents, string(model.OrderStatusPending),
	)

	created, err := scanOrder(row)
	if err != nil {
		return nil, storageError("insert order", err)
	}
	return created, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: order %d", model.ErrNotFound, id)
		}
		return nil, storageError("get order", err)
	}
	return o, nil
}

// ListOrders возвращает заказы по условиям q, начиная с самых новых.
func (r *PostgresRepository) ListOrders(ctx context.Context, q OrderQuery) ([]model.Order, error) {
	conditions, args := q.where()

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("select orders", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storageError("scan order", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("rows error", err)
	}

	return orders, nil
}

func (q OrderQuery) where() ([]string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if q.AccountID != nil {
		add("account_id = $%d", *q.AccountID)
	}
	if len(q.Statuses) > 0 {
		add("status = ANY($%d)", statusStrings(q.Statuses))
	}
	if q.From != nil {
		add("created_at >= $%d", *q.From)
	}
	if q.Until != nil {
		add("created_at < $%d", *q.Until)
	}
	return conditions, args
}

// UpdateOrderStatus устанавливает статус заказа, если его версия равна expectedVersion.
// Версия увеличивается только при смене статуса; updated_at обновляется всегда.
// При несовпадении версии возвращается model.ErrConflict, при отсутствии заказа model.ErrNotFound.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus, expectedVersion int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2,
		     version = version + CASE WHEN status = $2 THEN 0 ELSE 1 END,
		     updated_at = now()
		 WHERE id = $1 AND version = $3
		 RETURNING `+orderColumns,
		id, string(status), expectedVersion,
	))
	if err == nil {
		return o, nil
	}
	if !isNoRows(err) {
		return nil, storageError("update order status", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, storageError("check order", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: order %d", model.ErrNotFound, id)
	}
	return nil, fmt.Errorf("%w: order %d, expected version %d", model.ErrConflict, id, expectedVersion)
}

// SummarizeSales суммирует выручку и количество бутылей заказов с заданными статусами,
// созданных не раньше since. При since == nil граница не применяется.
func (r *PostgresRepository) SummarizeSales(ctx context.Context, statuses []model.OrderStatus, since *time.Time) (*model.SalesSummary, error) {
	conditions, args := OrderQuery{Statuses: statuses, From: since}.where()

	query := `SELECT COALESCE(SUM(total_cents), 0)::BIGINT,
	                 COALESCE(SUM(qty_18l), 0)::BIGINT,
	                 COALESCE(SUM(qty_12l), 0)::BIGINT,
	                 COALESCE(SUM(qty_5l), 0)::BIGINT
	          FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	var (
		s     model.SalesSummary
		cents int64
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(&cents, &s.Large18L, &s.Medium12L, &s.Small5L)
	if err != nil {
		return nil, storageError("summarize sales", err)
	}
	s.Revenue = fromCents(cents)

	return &s, nil
}
