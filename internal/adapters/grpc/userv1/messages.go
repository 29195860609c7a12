// Package userv1 は agenda.user.v1.UserDirectoryService の gRPC 定義です。
// メッセージは codec パッケージの JSON コーデックで送受信します。
package userv1

import "time"

// User はユーザーの公開ビューです。パスワードは含みません。
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserName  string `json:"user_name"`
	Role      string `json:"role"`
	State     string `json:"state"`
}

// AuthenticateRequest は認証要求です。
type AuthenticateRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// AuthenticateResponse は認証結果とアクセストークンです。
type AuthenticateResponse struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ListUsersResponse はユーザー一覧です。
type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// CreateUserRequest はユーザー作成要求です。
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserName  string `json:"user_name"`
	Password  string `json:"password"`
}

// CreateUserResponse は作成されたユーザーです。
type CreateUserResponse struct {
	User *User `json:"user"`
}

// UpdateUserRequest はユーザー更新要求です。省略した項目は変更されません。
type UpdateUserRequest struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	UserName  *string `json:"user_name,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// RemoveUserResponse は削除要求の結果です。
type RemoveUserResponse struct {
	Archived bool `json:"archived"`
}
