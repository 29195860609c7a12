package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// archivedFirstName は削除ではなくアーカイブ対象となる名の値です。
// 権限ではなく名の完全一致で判定します。
const archivedFirstName = "Admin"

// Service はユーザーディレクトリのユースケースをまとめます。
type Service struct {
	repo   Repository
	hasher PasswordHasher
	clock  Clock
	tx     TransactionManager
	logger *slog.Logger
}

// UseCase はユーザーディレクトリの公開インターフェースです。
type UseCase interface {
	FetchByID(ctx context.Context, id int64) (Detail, bool, error)
	Authenticate(ctx context.Context, in Credentials) (User, bool, error)
	ListAll(ctx context.Context) ([]Summary, error)
	Create(ctx context.Context, in CreateUserInput) (Detail, error)
	Update(ctx context.Context, in UpdateUserInput) error
	Remove(ctx context.Context, id int64) (Removal, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithLogger は削除・アーカイブ判定を記録するロガーを設定します。
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, hasher PasswordHasher, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, hasher: hasher, clock: clock, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserInput はユーザー作成時の入力です。
// 空白のみの UserName と、空または 72 バイトを超える Password は受け付けません。その他の値はそのまま保存します。
type CreateUserInput struct {
	FirstName string
	LastName  string
	UserName  string
	Password  string
}

// UpdateUserInput はユーザー更新時の入力です。nil の項目は変更しません。
type UpdateUserInput struct {
	ID        int64
	FirstName *string
	LastName  *string
	// UserName は受け付けますが反映しません。
	UserName *string
	Password *string
}

// FetchByID は ID でユーザーを取得します。存在しない場合は found=false を返します。
func (s *Service) FetchByID(ctx context.Context, id int64) (Detail, bool, error) {
	if id <= 0 {
		return Detail{}, false, nil
	}

	var u *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		u = found
		return nil
	}); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Detail{}, false, nil
		}
		return Detail{}, false, err
	}

	return u.Detail(), true, nil
}

// Authenticate はユーザー名とパスワードが一致する最初のユーザーを返します。
// ユーザー名不一致とパスワード不一致は区別しません。
func (s *Service) Authenticate(ctx context.Context, in Credentials) (User, bool, error) {
	if in.UserName == "" || !validPassword(in.Password) {
		return User{}, false, nil
	}

	var matched *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		candidates, err := s.repo.FindByUserName(txCtx, in.UserName)
		if err != nil {
			return err
		}

		for _, c := range candidates {
			ok, err := s.hasher.Compare(c.PasswordHash, in.Password)
			if err != nil {
				return err
			}
			if ok {
				matched = c
				return nil
			}
		}
		return nil
	}); err != nil {
		return User{}, false, err
	}

	if matched == nil {
		return User{}, false, nil
	}
	return *matched, true, nil
}

// ListAll は全ユーザーを一覧用ビューで返します。
func (s *Service) ListAll(ctx context.Context) ([]Summary, error) {
	var users []*User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		listed, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		users = listed
		return nil
	}); err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// Create は新しいユーザーを作成します。
func (s *Service) Create(ctx context.Context, in CreateUserInput) (Detail, error) {
	if strings.TrimSpace(in.UserName) == "" {
		return Detail{}, ErrInvalidUserName
	}
	if !validPassword(in.Password) {
		return Detail{}, ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Detail{}, err
	}

	var created *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		u := &User{
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			UserName:     in.UserName,
			PasswordHash: hash,
			State:        StateActive,
			Role:         RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		result, err := s.repo.Create(txCtx, u)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return Detail{}, err
	}

	return created.Detail(), nil
}

// Update は名・姓・パスワードを上書きします。ユーザー名は更新しません。
func (s *Service) Update(ctx context.Context, in UpdateUserInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("id %d: %w", in.ID, ErrUserNotFound)
	}

	var hash string
	if in.Password != nil {
		if !validPassword(*in.Password) {
			return ErrInvalidPassword
		}
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return err
		}
		hash = h
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			existing.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			existing.LastName = *in.LastName
		}
		if hash != "" {
			existing.PasswordHash = hash
		}

		existing.UpdatedAt = s.clock.Now()

		_, err = s.repo.Update(txCtx, existing)
		return err
	})
}

// Remove はユーザーを削除します。名が "Admin" のユーザーは削除せずアーカイブします。
func (s *Service) Remove(ctx context.Context, id int64) (Removal, error) {
	if id <= 0 {
		return 0, fmt.Errorf("id %d: %w", id, ErrUserNotFound)
	}

	var removal Removal
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if target.FirstName != archivedFirstName {
			if err := s.repo.Delete(txCtx, id); err != nil {
				return err
			}
			removal = RemovalDeleted
			return nil
		}

		target.State = StateArchived
		target.UpdatedAt = s.clock.Now()
		if _, err := s.repo.Update(txCtx, target); err != nil {
			return err
		}
		removal = RemovalArchived
		return nil
	}); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user removed", slog.Int64("user_id", id), slog.String("result", removal.String()))
	return removal, nil
}

// Exists は ID のユーザーが存在するかを返します。アーカイブ済みも存在とみなします。
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	var exists bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.Exists(txCtx, id)
		if err != nil {
			return err
		}
		exists = found
		return nil
	}); err != nil {
		return false, err
	}
	return exists, nil
}
