package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/repository"
)

type stubRepo struct {
	mu sync.Mutex

	accounts map[int64]*model.Account
	orders   map[int64]*model.Order
	nextID   int64

	lastQuery  repository.OrderQuery
	lastSince  *time.Time
	summary    model.SalesSummary
	createErr  error
	updateHook func()
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		accounts: make(map[int64]*model.Account),
		orders:   make(map[int64]*model.Order),
	}
}

func (s *stubRepo) Close() error                   { return nil }
func (s *stubRepo) Ping(ctx context.Context) error { return nil }

func (s *stubRepo) CreateAccount(ctx context.Context, a model.Account) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicateIdentity, a.Email)
		}
	}
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = &a
	out := a
	return &out, nil
}

func (s *stubRepo) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *stubRepo) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *stubRepo) UpdateAccount(ctx context.Context, id int64, ch model.AccountChanges) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if ch.Email != nil {
		a.Email = *ch.Email
	}
	if ch.PasswordHash != nil {
		a.PasswordHash = ch.PasswordHash
	}
	if ch.Phone != nil {
		a.Phone = *ch.Phone
	}
	if ch.Address != nil {
		a.Address = *ch.Address
	}
	if ch.Role != nil {
		a.Role = *ch.Role
	}
	if ch.Status != nil {
		a.Status = *ch.Status
	}
	out := *a
	return &out, nil
}

func (s *stubRepo) DeleteAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *stubRepo) ListAccounts(ctx context.Context, role *model.Role) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Account
	for _, a := range s.accounts {
		if role == nil || a.Role == *role {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CreateOrder(ctx context.Context, accountID int64, o model.NewOrder) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order := &model.Order{
		ID:            s.nextID,
		AccountID:     accountID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Quantities:    o.Quantities,
		PaymentMethod: o.PaymentMethod,
		Bank:          o.Bank,
		Reference:     o.Reference,
		Total:         *o.Total,
		Status:        model.OrderStatusPending,
		Version:       1,
	}
	s.orders[order.ID] = order
	out := *order
	return &out, nil
}

func (s *stubRepo) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (s *stubRepo) ListOrders(ctx context.Context, q repository.OrderQuery) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastQuery = q
	var out []model.Order
	for _, o := range s.orders {
		if q.AccountID != nil && o.AccountID != *q.AccountID {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *stubRepo) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus, expectedVersion int64) (*model.Order, error) {
	if s.updateHook != nil {
		s.updateHook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if o.Version != expectedVersion {
		return nil, model.ErrConflict
	}
	if o.Status != status {
		o.Status = status
		o.Version++
	}
	out := *o
	return &out, nil
}

func (s *stubRepo) SummarizeSales(ctx context.Context, statuses []model.OrderStatus, since *time.Time) (*model.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSince = since
	out := s.summary
	return &out, nil
}

type stubNotifier struct {
	orders []model.Order
	accept bool
}

func (n *stubNotifier) OrderPlaced(order model.Order) bool {
	n.orders = append(n.orders, order)
	return n.accept
}

func newTestService(repo Repository, notifier Notifier, opts Options) *Service {
	opts.PasswordCost = bcrypt.MinCost
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return NewService(repo, notifier, opts)
}

var anaProfile = model.Profile{Name: "Ana", Surname: "Pérez", Phone: "0412-1234567", Address: "Av. Bolívar, Caracas"}

func newOrderRequest(total string) model.NewOrder {
	t := decimal.RequireFromString(total)
	return model.NewOrder{
		CustomerName:  "Ana Pérez",
		Phone:         "0412-1234567",
		Address:       "Av. Bolívar, Caracas",
		Quantities:    model.Quantities{Large18L: 2},
		PaymentMethod: "cash",
		Total:         &t,
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{})
	ctx := context.Background()

	first, err := svc.Register(ctx, "Ana@Example.com ", "secret", anaProfile)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", first.Email)
	assert.Equal(t, model.RoleCustomer, first.Role)
	assert.Equal(t, model.AccountActive, first.Status)
	assert.NotEqual(t, []byte("secret"), first.PasswordHash)

	_, err = svc.Register(ctx, "ana@example.com", "other", anaProfile)
	require.ErrorIs(t, err, model.ErrDuplicateIdentity)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{})

	tests := []struct {
		name     string
		email    string
		password string
		profile  model.Profile
	}{
		{name: "bad email", email: "not-an-email", password: "secret", profile: anaProfile},
		{name: "empty password", email: "ana@example.com", password: "", profile: anaProfile},
		{name: "missing name", email: "ana@example.com", password: "secret", profile: model.Profile{Surname: "Pérez", Address: "Caracas"}},
		{name: "missing address", email: "ana@example.com", password: "secret", profile: model.Profile{Name: "Ana", Surname: "Pérez"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.profile)
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	a, err := svc.Register(ctx, "ana@example.com", "secret", anaProfile)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ANA@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.SetStatus(ctx, a.ID, model.AccountSuspended)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ana@example.com", "secret")
	require.ErrorIs(t, err, model.ErrAccountSuspended)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	require.ErrorIs(t, err, model.ErrAccountSuspended)
}

func TestUpdateAccount(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	a, err := svc.Register(ctx, "ana@example.com", "secret", anaProfile)
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, a.ID, model.AccountUpdate{})
	require.ErrorIs(t, err, model.ErrValidation)

	bad := model.Role("owner")
	_, err = svc.UpdateAccount(ctx, a.ID, model.AccountUpdate{Role: &bad})
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	password := "new-secret"
	phone := "0414-7654321"
	updated, err := svc.UpdateAccount(ctx, a.ID, model.AccountUpdate{Password: &password, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, anaProfile.Address, updated.Address)

	_, err = svc.Authenticate(ctx, "ana@example.com", "new-secret")
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, 42, model.AccountUpdate{Phone: &phone})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateAccount_RoleAndList(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{})
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "driver@example.com", "secret", anaProfile, model.RoleDistributor)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ana@example.com", "secret", anaProfile)
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, "x@example.com", "secret", anaProfile, model.Role("root"))
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	role := model.RoleDistributor
	list, err := svc.ListAccounts(ctx, &role)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "driver@example.com", list[0].Email)

	all, err := svc.ListAccounts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteAccount(ctx, list[0].ID))
	require.ErrorIs(t, svc.DeleteAccount(ctx, list[0].ID), model.ErrNotFound)
	require.ErrorIs(t, svc.DeleteAccount(ctx, 0), model.ErrInvalidArgument)
}

func TestAccounts_StoreCanonicalRoleAndStatus(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	boss, err := svc.CreateAccount(ctx, "boss@example.com", "secret", anaProfile, model.Role(" ADMIN "))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, boss.Role)
	assert.Equal(t, model.RoleAdmin, repo.accounts[boss.ID].Role)

	adminRole := model.RoleAdmin
	admins, err := svc.ListAccounts(ctx, &adminRole)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	role := model.Role("Distributor")
	status := model.AccountStatus("SUSPENDED")
	updated, err := svc.UpdateAccount(ctx, boss.ID, model.AccountUpdate{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDistributor, updated.Role)
	assert.Equal(t, model.AccountSuspended, updated.Status)
	assert.True(t, updated.Suspended())

	_, err = svc.Authenticate(ctx, "boss@example.com", "secret")
	require.ErrorIs(t, err, model.ErrAccountSuspended)
}

func TestPlaceOrder(t *testing.T) {
	notifier := &stubNotifier{accept: true}
	svc := newTestService(newStubRepo(), notifier, Options{})

	order, err := svc.PlaceOrder(context.Background(), 7, newOrderRequest("10.004"))
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.AccountID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.Quantities{Large18L: 2}, order.Quantities)
	assert.True(t, decimal.RequireFromString("10").Equal(order.Total), order.Total.String())

	require.Len(t, notifier.orders, 1)
	assert.Equal(t, order.ID, notifier.orders[0].ID)
}

func TestPlaceOrder_SucceedsWhenNotificationDropped(t *testing.T) {
	notifier := &stubNotifier{accept: false}
	svc := newTestService(newStubRepo(), notifier, Options{})

	order, err := svc.PlaceOrder(context.Background(), 7, newOrderRequest("10.00"))
	require.NoError(t, err)
	assert.NotZero(t, order.ID)

	svc = newTestService(newStubRepo(), nil, Options{})
	_, err = svc.PlaceOrder(context.Background(), 7, newOrderRequest("10.00"))
	require.NoError(t, err)
}

func TestPlaceOrder_Validation(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{})
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 0, newOrderRequest("10.00"))
	require.ErrorIs(t, err, model.ErrValidation)

	o := newOrderRequest("-1")
	_, err = svc.PlaceOrder(ctx, 7, o)
	require.ErrorIs(t, err, model.ErrValidation)

	o = newOrderRequest("10.00")
	o.Total = nil
	_, err = svc.PlaceOrder(ctx, 7, o)
	require.ErrorIs(t, err, model.ErrValidation)

	o = newOrderRequest("10.00")
	o.Quantities.Small5L = -1
	_, err = svc.PlaceOrder(ctx, 7, o)
	require.ErrorIs(t, err, model.ErrValidation)

	o = newOrderRequest("10.00")
	o.Address = "  "
	_, err = svc.PlaceOrder(ctx, 7, o)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestPlaceOrder_RejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *model.NewOrder)
	}{
		{
			name:   "total above int64 cents",
			mutate: func(o *model.NewOrder) { *o = newOrderRequest("92233720368547758.08") },
		},
		{
			name:   "total above business maximum",
			mutate: func(o *model.NewOrder) { *o = newOrderRequest("1000000000.01") },
		},
		{
			name:   "quantity above maximum",
			mutate: func(o *model.NewOrder) { o.Quantities.Medium12L = model.MaxQuantity + 1 },
		},
		{
			name:   "quantity far above maximum",
			mutate: func(o *model.NewOrder) { o.Quantities.Large18L = 1_000_000_000 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			notifier := &stubNotifier{}
			svc := newTestService(repo, notifier, Options{})

			o := newOrderRequest("10.00")
			tt.mutate(&o)

			_, err := svc.PlaceOrder(context.Background(), 7, o)
			require.ErrorIs(t, err, model.ErrValidation)
			assert.Empty(t, repo.orders)
			assert.Empty(t, notifier.orders)
		})
	}

	svc := newTestService(newStubRepo(), nil, Options{})
	o := newOrderRequest("1000000000.00")
	o.Quantities = model.Quantities{Large18L: model.MaxQuantity}
	_, err := svc.PlaceOrder(context.Background(), 7, o)
	require.NoError(t, err)
}

func TestHistory(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, 7, newOrderRequest("5.00"))
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, 7, newOrderRequest("8.00"))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, 9, newOrderRequest("9.00"))
	require.NoError(t, err)

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	_, err = svc.History(ctx, 0)
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestChangeStatus_Strict(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, newOrderRequest("10.00"))
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, order.ID, "delivered", nil)
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	accepted, err := svc.ChangeStatus(ctx, order.ID, "Accepted", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAccepted, accepted.Status)
	assert.Equal(t, int64(2), accepted.Version)

	again, err := svc.ChangeStatus(ctx, order.ID, "accepted", nil)
	require.NoError(t, err)
	assert.Equal(t, accepted.Version, again.Version)

	_, err = svc.ChangeStatus(ctx, order.ID, "lost", nil)
	require.ErrorIs(t, err, model.ErrInvalidStatus)

	_, err = svc.ChangeStatus(ctx, 999, "accepted", nil)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestChangeStatus_Permissive(t *testing.T) {
	svc := newTestService(newStubRepo(), nil, Options{TransitionMode: model.TransitionPermissive})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, newOrderRequest("10.00"))
	require.NoError(t, err)

	delivered, err := svc.ChangeStatus(ctx, order.ID, "delivered", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, delivered.Status)

	back, err := svc.ChangeStatus(ctx, order.ID, "pending", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, back.Status)
}

func TestChangeStatus_Conflict(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, newOrderRequest("10.00"))
	require.NoError(t, err)

	stale := order.Version
	_, err = svc.ChangeStatus(ctx, order.ID, "accepted", &stale)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, order.ID, "rejected", &stale)
	require.ErrorIs(t, err, model.ErrConflict)

	// другой дистрибьютор меняет заказ между чтением и записью
	repo.updateHook = func() {
		repo.mu.Lock()
		repo.orders[order.ID].Version++
		repo.mu.Unlock()
	}
	_, err = svc.ChangeStatus(ctx, order.ID, "in_process", nil)
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestQueues(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{})
	ctx := context.Background()

	_, err := svc.PendingQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusPending}, repo.lastQuery.Statuses)

	_, err = svc.InFlightQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.InFlightStatuses, repo.lastQuery.Statuses)

	_, err = svc.CompletedQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusDelivered}, repo.lastQuery.Statuses)

	_, err = svc.ListByStatuses(ctx, nil)
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = svc.ListByStatus(ctx, model.OrderStatus("lost"))
	require.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestListFiltered(t *testing.T) {
	loc := time.FixedZone("VET", -4*3600)
	repo := newStubRepo()
	svc := newTestService(repo, nil, Options{Location: loc})
	ctx := context.Background()

	_, err := svc.ListFiltered(ctx, OrderFilter{Status: "in process", DateFrom: "2026-10-01", DateTo: "2026-10-15"})
	require.NoError(t, err)

	q := repo.lastQuery
	assert.Equal(t, []model.OrderStatus{model.OrderStatusInProcess}, q.Statuses)
	require.NotNil(t, q.From)
	require.NotNil(t, q.Until)
	assert.True(t, q.From.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, loc)))
	assert.True(t, q.Until.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, loc)))

	_, err = svc.ListFiltered(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Nil(t, repo.lastQuery.From)
	assert.Nil(t, repo.lastQuery.Until)
	assert.Empty(t, repo.lastQuery.Statuses)

	tests := []struct {
		name   string
		filter OrderFilter
	}{
		{name: "unknown status", filter: OrderFilter{Status: "lost"}},
		{name: "malformed date", filter: OrderFilter{DateFrom: "15/10/2026"}},
		{name: "reversed range", filter: OrderFilter{DateFrom: "2026-10-15", DateTo: "2026-10-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListFiltered(ctx, tt.filter)
			require.ErrorIs(t, err, model.ErrInvalidArgument)
		})
	}
}

func TestSummarize(t *testing.T) {
	loc := time.FixedZone("VET", -4*3600)
	now := time.Date(2026, 10, 15, 18, 30, 0, 0, loc)

	repo := newStubRepo()
	repo.summary = model.SalesSummary{
		Revenue:  decimal.RequireFromString("14.754"),
		Large18L: 2,
	}
	svc := newTestService(repo, nil, Options{Location: loc, Now: func() time.Time { return now }})
	ctx := context.Background()

	summary, err := svc.Summarize(ctx, "week")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodWeek, summary.Period)
	assert.True(t, decimal.RequireFromString("14.75").Equal(summary.Revenue), summary.Revenue.String())
	require.NotNil(t, repo.lastSince)
	assert.True(t, repo.lastSince.Equal(time.Date(2026, 10, 12, 0, 0, 0, 0, loc)))

	summary, err = svc.Summarize(ctx, "decade")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodTotal, summary.Period)
	assert.Nil(t, repo.lastSince)
}
