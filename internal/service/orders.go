package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/repository"
)

const dateLayout = "2006-01-02"

// OrderFilter описывает фильтр административной выборки заказов.
// Даты задаются в формате YYYY-MM-DD, DateTo включает весь указанный день.
type OrderFilter struct {
	Status   string
	DateFrom string
	DateTo   string
}

func validateNewOrder(accountID int64, o model.NewOrder) error {
	if accountID <= 0 {
		return fmt.Errorf("%w: account id is required", model.ErrValidation)
	}

	var problems []string
	if strings.TrimSpace(o.CustomerName) == "" {
		problems = append(problems, "customer name")
	}
	if strings.TrimSpace(o.Address) == "" {
		problems = append(problems, "address")
	}
	if strings.TrimSpace(o.PaymentMethod) == "" {
		problems = append(problems, "payment method")
	}
	if o.Total == nil {
		problems = append(problems, "total")
	} else if o.Total.IsNegative() {
		problems = append(problems, "negative total")
	} else if o.Total.Round(2).GreaterThan(model.MaxOrderTotal) {
		problems = append(problems, fmt.Sprintf("total exceeds %s", model.MaxOrderTotal.StringFixed(2)))
	}
	for _, q := range []int{o.Quantities.Large18L, o.Quantities.Medium12L, o.Quantities.Small5L} {
		if q < 0 {
			problems = append(problems, "negative quantity")
			break
		}
		if q > model.MaxQuantity {
			problems = append(problems, fmt.Sprintf("quantity exceeds %d", model.MaxQuantity))
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}

// PlaceOrder сохраняет новый заказ клиента в статусе pending и ставит уведомление в очередь.
// Итоговая сумма берётся из запроса как есть и не пересчитывается по количеству бутылей.
func (s *Service) PlaceOrder(ctx context.Context, accountID int64, o model.NewOrder) (*model.Order, error) {
	if err := validateNewOrder(accountID, o); err != nil {
		return nil, err
	}

	total := o.Total.Round(2)
	o.Total = &total

	created, err := s.repo.CreateOrder(ctx, accountID, o)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(*created)
	}

	return created, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id %d", model.ErrInvalidArgument, id)
	}
	return s.repo.GetOrder(ctx, id)
}

// History возвращает заказы учётной записи, начиная с самых новых.
func (s *Service) History(ctx context.Context, accountID int64) ([]model.Order, error) {
	if accountID <= 0 {
		return nil, fmt.Errorf("%w: account id %d", model.ErrInvalidArgument, accountID)
	}
	return s.repo.ListOrders(ctx, repository.OrderQuery{AccountID: &accountID})
}

// ListByStatus возвращает заказы в заданном статусе, начиная с самых новых.
func (s *Service) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return s.ListByStatuses(ctx, []model.OrderStatus{status})
}

// ListByStatuses возвращает заказы в любом из заданных статусов, начиная с самых новых.
func (s *Service) ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("%w: no statuses", model.ErrInvalidArgument)
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, st)
		}
	}
	return s.repo.ListOrders(ctx, repository.OrderQuery{Statuses: statuses})
}

// PendingQueue возвращает заказы, ожидающие решения дистрибьютора.
func (s *Service) PendingQueue(ctx context.Context) ([]model.Order, error) {
	return s.ListByStatus(ctx, model.OrderStatusPending)
}

// InFlightQueue возвращает принятые, но ещё не доставленные заказы.
func (s *Service) InFlightQueue(ctx context.Context) ([]model.Order, error) {
	return s.ListByStatuses(ctx, model.InFlightStatuses)
}

// CompletedQueue возвращает доставленные заказы.
func (s *Service) CompletedQueue(ctx context.Context) ([]model.Order, error) {
	return s.ListByStatus(ctx, model.OrderStatusDelivered)
}

// ListFiltered возвращает заказы по статусу и диапазону дат создания.
func (s *Service) ListFiltered(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	var q repository.OrderQuery

	if strings.TrimSpace(f.Status) != "" {
		st, err := model.ParseOrderStatus(f.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: status filter: %w", model.ErrInvalidArgument, err)
		}
		q.Statuses = []model.OrderStatus{st}
	}

	from, err := s.parseDate("date_from", f.DateFrom)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDate("date_to", f.DateTo)
	if err != nil {
		return nil, err
	}

	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: date_from is after date_to", model.ErrInvalidArgument)
	}

	q.From = from
	if to != nil {
		until := to.AddDate(0, 0, 1)
		q.Until = &until
	}

	return s.repo.ListOrders(ctx, q)
}

func (s *Service) parseDate(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", model.ErrInvalidArgument, name)
	}
	return &t, nil
}

// ChangeStatus переводит заказ в статус target.
// Если expectedVersion не задан, используется версия, прочитанная перед проверкой перехода.
// Параллельное изменение заказа приводит к model.ErrConflict.
func (s *Service) ChangeStatus(ctx context.Context, id int64, target string, expectedVersion *int64) (*model.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id %d", model.ErrInvalidArgument, id)
	}

	status, err := model.ParseOrderStatus(target)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	version := current.Version
	if expectedVersion != nil {
		if *expectedVersion != current.Version {
			return nil, fmt.Errorf("%w: order %d is at version %d", model.ErrConflict, id, current.Version)
		}
		version = *expectedVersion
	}

	if err := s.transitions.Transition(current.Status, status); err != nil {
		return nil, err
	}

	return s.repo.UpdateOrderStatus(ctx, id, status, version)
}
