// Package service реализует бизнес-логику сервиса доставки воды.
package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/repository"
)

// PasswordCost задаёт стоимость bcrypt для хранимых паролей.
const PasswordCost = 12

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, a model.Account) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	UpdateAccount(ctx context.Context, id int64, ch model.AccountChanges) (*model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context, role *model.Role) ([]model.Account, error)

	CreateOrder(ctx context.Context, accountID int64, o model.NewOrder) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, q repository.OrderQuery) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus, expectedVersion int64) (*model.Order, error)
	SummarizeSales(ctx context.Context, statuses []model.OrderStatus, since *time.Time) (*model.SalesSummary, error)
}

// Notifier принимает событие о новом заказе. Вызов не должен блокироваться.
type Notifier interface {
	OrderPlaced(order model.Order) bool
}

// Options задаёт настраиваемое поведение сервиса. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	TransitionMode model.TransitionMode
	Location       *time.Location
	PasswordCost   int
	Now            func() time.Time
}

// Service содержит бизнес-логику сервиса доставки воды.
type Service struct {
	repo         Repository
	notifier     Notifier
	transitions  model.TransitionMode
	location     *time.Location
	passwordCost int
	now          func() time.Time
	dummyHash    []byte
}

// NewService создаёт новый сервис с указанным репозиторием и получателем уведомлений.
// notifier может быть nil, тогда уведомления не отправляются.
func NewService(repo Repository, notifier Notifier, opts Options) *Service {
	if opts.TransitionMode == "" {
		opts.TransitionMode = model.TransitionStrict
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = PasswordCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		repo:         repo,
		notifier:     notifier,
		transitions:  opts.TransitionMode,
		location:     opts.Location,
		passwordCost: opts.PasswordCost,
		now:          opts.Now,
	}

	// Хэш для сравнения при неизвестном e-mail, чтобы время ответа не выдавало наличие учётной записи.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("puntodeagua-dummy-password"), s.passwordCost)

	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) clock() time.Time {
	return s.now().In(s.location)
}
