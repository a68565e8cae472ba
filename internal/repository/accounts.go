package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

const accountColumns = `id, email, password_hash, name, surname, phone, address, role, status, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		a      model.Account
		role   string
		status string
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Surname, &a.Phone, &a.Address,
		&role, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = model.Role(role)
	a.Status = model.AccountStatus(status)
	return &a, nil
}

// CreateAccount сохраняет новую учётную запись и возвращает её вместе с идентификатором.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a model.Account) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, name, surname, phone, address, role, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+accountColumns,
		a.Email, a.PasswordHash, a.Name, a.Surname, a.Phone, a.Address, string(a.Role), string(a.Status),
	)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicateIdentity, a.Email)
		}
		return nil, storageError("create account", err)
	}
	return created, nil
}

// GetAccountByEmail возвращает учётную запись по e-mail.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`,
		email,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, model.ErrNotFound
		}
		return nil, storageError("get account by email", err)
	}
	return a, nil
}

// GetAccountByID возвращает учётную запись по идентификатору.
func (r *PostgresRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: account %d", model.ErrNotFound, id)
		}
		return nil, storageError("get account", err)
	}
	return a, nil
}

// UpdateAccount изменяет только переданные поля и всегда обновляет updated_at.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, id int64, ch model.AccountChanges) (*model.Account, error) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 9)

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if ch.Email != nil {
		set("email", *ch.Email)
	}
	if ch.PasswordHash != nil {
		set("password_hash", ch.PasswordHash)
	}
	if ch.Name != nil {
		set("name", *ch.Name)
	}
	if ch.Surname != nil {
		set("surname", *ch.Surname)
	}
	if ch.Phone != nil {
		set("phone", *ch.Phone)
	}
	if ch.Address != nil {
		set("address", *ch.Address)
	}
	if ch.Role != nil {
		set("role", string(*ch.Role))
	}
	if ch.Status != nil {
		set("status", string(*ch.Status))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), accountColumns)

	a, err := scanAccount(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case isNoRows(err):
			return nil, fmt.Errorf("%w: account %d", model.ErrNotFound, id)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%w: account %d", model.ErrDuplicateIdentity, id)
		}
		return nil, storageError("update account", err)
	}
	return a, nil
}

// DeleteAccount удаляет учётную запись. Заказы сохраняют ссылку на её идентификатор.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return storageError("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", model.ErrNotFound, id)
	}
	return nil
}

// ListAccounts возвращает учётные записи по возрастанию идентификатора, при необходимости только с заданной ролью.
func (r *PostgresRepository) ListAccounts(ctx context.Context, role *model.Role) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any
	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, string(*role))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("select accounts", err)
	}
	defer rows.Close()

	res := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, storageError("scan account", err)
		}
		res = append(res, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("rows error", err)
	}

	return res, nil
}
