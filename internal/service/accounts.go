package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/validation"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("%w: password: %w", model.ErrValidation, err)
	}
	return hash, nil
}

func validateNewAccount(email, password string, p model.Profile) error {
	var missing []string
	if !validation.IsValidEmail(email) {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Surname) == "" {
		missing = append(missing, "surname")
	}
	if strings.TrimSpace(p.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or malformed %s", model.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Register регистрирует нового клиента.
func (s *Service) Register(ctx context.Context, email, password string, p model.Profile) (*model.Account, error) {
	return s.createAccount(ctx, email, password, p, model.RoleCustomer)
}

// CreateAccount создаёт учётную запись с заданной ролью. Используется администратором.
func (s *Service) CreateAccount(ctx context.Context, email, password string, p model.Profile, role model.Role) (*model.Account, error) {
	parsed, err := model.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	return s.createAccount(ctx, email, password, p, parsed)
}

func (s *Service) createAccount(ctx context.Context, email, password string, p model.Profile, role model.Role) (*model.Account, error) {
	email = normalizeEmail(email)
	if err := validateNewAccount(email, password, p); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateAccount(ctx, model.Account{
		Email:        email,
		PasswordHash: hash,
		Profile:      p,
		Role:         role,
		Status:       model.AccountActive,
	})
}

// Authenticate проверяет e-mail и пароль и возвращает учётную запись.
// Неизвестный e-mail и неверный пароль дают одну и ту же ошибку model.ErrInvalidCredentials.
// Заблокированная учётная запись всегда получает model.ErrAccountSuspended.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	a, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	mismatch := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil

	if a.Suspended() {
		return nil, model.ErrAccountSuspended
	}
	if mismatch {
		return nil, model.ErrInvalidCredentials
	}

	return a, nil
}

// GetAccount возвращает учётную запись по идентификатору.
func (s *Service) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: account id %d", model.ErrInvalidArgument, id)
	}
	return s.repo.GetAccountByID(ctx, id)
}

// UpdateAccount изменяет только переданные поля учётной записи.
func (s *Service) UpdateAccount(ctx context.Context, id int64, u model.AccountUpdate) (*model.Account, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: account id %d", model.ErrInvalidArgument, id)
	}
	if u.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrValidation)
	}

	ch := model.AccountChanges{
		Name:    u.Name,
		Surname: u.Surname,
		Phone:   u.Phone,
		Address: u.Address,
	}

	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		if !validation.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: malformed email", model.ErrValidation)
		}
		ch.Email = &email
	}
	if u.Password != nil {
		if *u.Password == "" {
			return nil, fmt.Errorf("%w: empty password", model.ErrValidation)
		}
		hash, err := s.hashPassword(*u.Password)
		if err != nil {
			return nil, err
		}
		ch.PasswordHash = hash
	}
	if u.Role != nil {
		role, err := model.ParseRole(string(*u.Role))
		if err != nil {
			return nil, err
		}
		ch.Role = &role
	}
	if u.Status != nil {
		status, err := model.ParseAccountStatus(string(*u.Status))
		if err != nil {
			return nil, err
		}
		ch.Status = &status
	}

	return s.repo.UpdateAccount(ctx, id, ch)
}

// SetRole меняет роль учётной записи.
func (s *Service) SetRole(ctx context.Context, id int64, role model.Role) (*model.Account, error) {
	return s.UpdateAccount(ctx, id, model.AccountUpdate{Role: &role})
}

// SetStatus блокирует или разблокирует учётную запись.
func (s *Service) SetStatus(ctx context.Context, id int64, status model.AccountStatus) (*model.Account, error) {
	return s.UpdateAccount(ctx, id, model.AccountUpdate{Status: &status})
}

// DeleteAccount удаляет учётную запись без удаления её заказов.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: account id %d", model.ErrInvalidArgument, id)
	}
	return s.repo.DeleteAccount(ctx, id)
}

// ListAccounts возвращает учётные записи, при необходимости только с заданной ролью.
func (s *Service) ListAccounts(ctx context.Context, role *model.Role) ([]model.Account, error) {
	if role != nil {
		if _, err := model.ParseRole(string(*role)); err != nil {
			return nil, err
		}
	}
	return s.repo.ListAccounts(ctx, role)
}
