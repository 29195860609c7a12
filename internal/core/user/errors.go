package user

import "errors"

var (
	// ErrUserNotFound は対象ユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUserName はユーザー名が空の場合に返却されます。
	ErrInvalidUserName = errors.New("invalid user name")
	// ErrInvalidPassword はパスワードが空、または 72 バイトを超える場合に返却されます。
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidState は状態値が不正な場合に返却されます。
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidRole は権限値が不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
)
