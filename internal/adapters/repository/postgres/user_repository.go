package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	pgdb "github.com/ogurasousui/agenda-directory/internal/platform/db/postgres"
)

const (
	insertUserSQL = `
        INSERT INTO users (first_name, last_name, user_name, password_hash, state, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at
    `
	updateUserSQL = `
        UPDATE users
           SET first_name = $1,
               last_name = $2,
               password_hash = $3,
               state = $4,
               role = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at
    `
	deleteUserSQL     = `DELETE FROM users WHERE id = $1`
	selectUserByIDSQL = `
        SELECT id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `
	selectUsersByUserNameSQL = `
        SELECT id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at
          FROM users
         WHERE user_name = $1
         ORDER BY id
    `
	selectUsersSQL = `
        SELECT id, first_name, last_name, user_name, password_hash, state, role, created_at, updated_at
          FROM users
         ORDER BY id
    `
	existsUserSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
)

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。ID はデータベースが採番します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertUserSQL,
		u.FirstName,
		u.LastName,
		u.UserName,
		u.PasswordHash,
		string(u.State),
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。user_name は更新対象に含めません。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, updateUserSQL,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		string(u.State),
		string(u.Role),
		u.UpdatedAt,
		u.ID,
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
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanUser(exec.QueryRow(ctx, selectUserByIDSQL, id))
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
	return r.queryUsers(ctx, selectUsersByUserNameSQL, userName)
}

// List は全ユーザーを ID 昇順で返します。
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	return r.queryUsers(ctx, selectUsersSQL)
}

// Exists は ID のユーザーが存在するかを返します。
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var exists bool
	if err := exec.QueryRow(ctx, existsUserSQL, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return exists, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sql, args...)
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

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u                    user.User
		state, role          string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.UserName, &u.PasswordHash, &state, &role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt

	return &u, nil
}
