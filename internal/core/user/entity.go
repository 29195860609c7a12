package user

import "time"

// State はユーザーのライフサイクル状態を表します。
type State string

const (
	StateActive   State = "active"
	StateArchived State = "archived"
)

// Role はユーザーの権限区分を表します。
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User はユーザーエンティティです。
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	UserName     string
	PasswordHash string
	State        State
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary は一覧表示用の公開ビューです。
type Summary struct {
	ID        int64
	FirstName string
	LastName  string
	UserName  string
	Role      Role
	State     State
}

// Detail は単一取得用の公開ビューです。パスワードや連絡先は含みません。
type Detail struct {
	ID        int64
	FirstName string
	LastName  string
	UserName  string
	Role      Role
	State     State
}

// Credentials は認証時の入力です。
type Credentials struct {
	UserName string
	Password string
}

// Removal は削除要求の結果を表します。
type Removal int

const (
	// RemovalDeleted は行が物理削除されたことを示します。
	RemovalDeleted Removal = iota + 1
	// RemovalArchived は行を残したままアーカイブしたことを示します。
	RemovalArchived
)

func (r Removal) String() string {
	switch r {
	case RemovalDeleted:
		return "deleted"
	case RemovalArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// Summary は User を一覧用ビューへ変換します。
func (u *User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Role:      u.Role,
		State:     u.State,
	}
}

// Detail は User を単一取得用ビューへ変換します。
func (u *User) Detail() Detail {
	return Detail{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Role:      u.Role,
		State:     u.State,
	}
}

// ParseState は永続化された文字列を State に変換します。
func ParseState(raw string) (State, error) {
	switch s := State(raw); s {
	case StateActive, StateArchived:
		return s, nil
	default:
		return "", ErrInvalidState
	}
}

// ParseRole は永続化された文字列を Role に変換します。
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}
