package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ogurasousui/agenda-directory/internal/core/user"
	sqlitedb "github.com/ogurasousui/agenda-directory/internal/platform/db/sqlite"
)

const userColumns = `id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at`

// UserRepository は SQLite を利用したユーザー永続化の実装です。
type UserRepository struct {
	db sqlitedb.Queryer
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(db sqlitedb.Queryer) *UserRepository {
	return &UserRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	q := sqlitedb.QueryerFromContext(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, user_name, password_hash, state, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		u.FirstName, u.LastName, u.UserName, u.PasswordHash, string(u.State), string(u.Role), u.CreatedAt, u.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。user_name は更新しません。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	q := sqlitedb.QueryerFromContext(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		UPDATE users
		   SET first_name = ?, last_name = ?, password_hash = ?, state = ?, role = ?, updated_at = ?
		 WHERE id = ?
		RETURNING `+userColumns,
		u.FirstName, u.LastName, u.PasswordHash, string(u.State), string(u.Role), u.UpdatedAt, u.ID,
	)

	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return updated, nil
}

// Delete はユーザーを物理削除します。
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	q := sqlitedb.QueryerFromContext(ctx, r.db)
	res, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	q := sqlitedb.QueryerFromContext(ctx, r.db)
	found, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	return found, nil
}

// FindByUserName はユーザー名が一致するユーザーを ID 昇順で返します。
func (r *UserRepository) FindByUserName(ctx context.Context, userName string) ([]*user.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = ? ORDER BY id`, userName)
}

// List は全ユーザーを ID 昇順で返します。
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// Exists は ID のユーザーが存在するかを返します。
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	q := sqlitedb.QueryerFromContext(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return exists, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	q := sqlitedb.QueryerFromContext(ctx, r.db)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row scanner) (*user.User, error) {
	var (
		u           user.User
		state, role string
	)

	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.UserName, &u.PasswordHash, &state, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	var err error
	if u.State, err = user.ParseState(state); err != nil {
		return nil, err
	}
	if u.Role, err = user.ParseRole(role); err != nil {
		return nil, err
	}
	return &u, nil
}
