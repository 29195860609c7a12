package handler

import (
	"context"
	"time"

	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/userv1"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TokenIssuer は認証済みユーザーにアクセストークンを発行します。
type TokenIssuer interface {
	Issue(u user.User) (string, time.Time, error)
}

// UserDirectoryHandler は UserDirectoryService の gRPC 実装です。
type UserDirectoryHandler struct {
	svc    user.UseCase
	issuer TokenIssuer
}

var _ userv1.UserDirectoryServer = (*UserDirectoryHandler)(nil)

// NewUserDirectoryHandler は UserDirectoryHandler を生成します。
func NewUserDirectoryHandler(svc user.UseCase, issuer TokenIssuer) *UserDirectoryHandler {
	return &UserDirectoryHandler{svc: svc, issuer: issuer}
}

// GetUser は ID でユーザーを取得します。
func (h *UserDirectoryHandler) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*userv1.User, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, ok, err := h.svc.FetchByID(ctx, req.GetValue())
	if err != nil {
		return nil, toStatusError(err)
	}
	if !ok {
		return nil, status.Errorf(codes.NotFound, "user %d not found", req.GetValue())
	}

	return toAPIUser(found), nil
}

// Authenticate は資格情報を検証し、アクセストークンを発行します。
func (h *UserDirectoryHandler) Authenticate(ctx context.Context, req *userv1.AuthenticateRequest) (*userv1.AuthenticateResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	u, ok, err := h.svc.Authenticate(ctx, user.Credentials{UserName: req.UserName, Password: req.Password})
	if err != nil {
		return nil, toStatusError(err)
	}
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if u.State == user.StateArchived {
		return nil, status.Error(codes.PermissionDenied, "user is archived")
	}

	token, expiresAt, err := h.issuer.Issue(u)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &userv1.AuthenticateResponse{
		User:        toAPIUser(u.Detail()),
		AccessToken: token,
		ExpiresAt:   expiresAt.UTC(),
	}, nil
}

// ListUsers は全ユーザーを ID 昇順で返します。
func (h *UserDirectoryHandler) ListUsers(ctx context.Context, _ *emptypb.Empty) (*userv1.ListUsersResponse, error) {
	summaries, err := h.svc.ListAll(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	users := make([]*userv1.User, 0, len(summaries))
	for _, s := range summaries {
		users = append(users, &userv1.User{
			ID:        s.ID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			UserName:  s.UserName,
			Role:      string(s.Role),
			State:     string(s.State),
		})
	}

	return &userv1.ListUsersResponse{Users: users}, nil
}

// CreateUser はユーザーを作成します。
func (h *UserDirectoryHandler) CreateUser(ctx context.Context, req *userv1.CreateUserRequest) (*userv1.CreateUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.Create(ctx, user.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Password:  req.Password,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &userv1.CreateUserResponse{User: toAPIUser(created)}, nil
}

// UpdateUser はユーザー情報を更新します。user_name は反映されません。
func (h *UserDirectoryHandler) UpdateUser(ctx context.Context, req *userv1.UpdateUserRequest) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.Update(ctx, user.UpdateUserInput{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Password:  req.Password,
	}); err != nil {
		return nil, toStatusError(err)
	}

	return &emptypb.Empty{}, nil
}

// RemoveUser はユーザーを削除します。名が "Admin" の場合はアーカイブします。
func (h *UserDirectoryHandler) RemoveUser(ctx context.Context, req *wrapperspb.Int64Value) (*userv1.RemoveUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	removal, err := h.svc.Remove(ctx, req.GetValue())
	if err != nil {
		return nil, toStatusError(err)
	}

	return &userv1.RemoveUserResponse{Archived: removal == user.RemovalArchived}, nil
}

// UserExists は ID のユーザーが存在するかを返します。
func (h *UserDirectoryHandler) UserExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	exists, err := h.svc.Exists(ctx, req.GetValue())
	if err != nil {
		return nil, toStatusError(err)
	}

	return wrapperspb.Bool(exists), nil
}

func toAPIUser(d user.Detail) *userv1.User {
	return &userv1.User{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		UserName:  d.UserName,
		Role:      string(d.Role),
		State:     string(d.State),
	}
}
