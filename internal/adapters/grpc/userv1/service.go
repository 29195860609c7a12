package userv1

import (
	"context"

	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/codec"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "agenda.user.v1.UserDirectoryService"

	GetUserFullMethod      = "/" + ServiceName + "/GetUser"
	AuthenticateFullMethod = "/" + ServiceName + "/Authenticate"
	ListUsersFullMethod    = "/" + ServiceName + "/ListUsers"
	CreateUserFullMethod   = "/" + ServiceName + "/CreateUser"
	UpdateUserFullMethod   = "/" + ServiceName + "/UpdateUser"
	RemoveUserFullMethod   = "/" + ServiceName + "/RemoveUser"
	UserExistsFullMethod   = "/" + ServiceName + "/UserExists"
)

// UserDirectoryServer はサーバー側の実装が満たすインターフェースです。
type UserDirectoryServer interface {
	GetUser(context.Context, *wrapperspb.Int64Value) (*User, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	ListUsers(context.Context, *emptypb.Empty) (*ListUsersResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*emptypb.Empty, error)
	RemoveUser(context.Context, *wrapperspb.Int64Value) (*RemoveUserResponse, error)
	UserExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

// RegisterUserDirectoryServer は srv を gRPC サーバーに登録します。
func RegisterUserDirectoryServer(s grpc.ServiceRegistrar, srv UserDirectoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler は型付きのハンドラー関数から grpc.MethodDesc 用のハンドラーを組み立てます。
func unaryHandler[Req any, Resp any](fullMethod string, call func(UserDirectoryServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserDirectoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserDirectoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc は UserDirectoryService のサービス記述子です。
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUser", Handler: unaryHandler(GetUserFullMethod, UserDirectoryServer.GetUser)},
		{MethodName: "Authenticate", Handler: unaryHandler(AuthenticateFullMethod, UserDirectoryServer.Authenticate)},
		{MethodName: "ListUsers", Handler: unaryHandler(ListUsersFullMethod, UserDirectoryServer.ListUsers)},
		{MethodName: "CreateUser", Handler: unaryHandler(CreateUserFullMethod, UserDirectoryServer.CreateUser)},
		{MethodName: "UpdateUser", Handler: unaryHandler(UpdateUserFullMethod, UserDirectoryServer.UpdateUser)},
		{MethodName: "RemoveUser", Handler: unaryHandler(RemoveUserFullMethod, UserDirectoryServer.RemoveUser)},
		{MethodName: "UserExists", Handler: unaryHandler(UserExistsFullMethod, UserDirectoryServer.UserExists)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agenda/user/v1/user_directory.proto",
}

// UserDirectoryClient は UserDirectoryService のクライアントです。
type UserDirectoryClient struct {
	cc grpc.ClientConnInterface
}

// NewUserDirectoryClient は JSON コーデックを強制するクライアントを生成します。
func NewUserDirectoryClient(cc grpc.ClientConnInterface) *UserDirectoryClient {
	return &UserDirectoryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *UserDirectoryClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserDirectoryClient) GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c, GetUserFullMethod, in, opts)
}

func (c *UserDirectoryClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	return invoke[AuthenticateResponse](ctx, c, AuthenticateFullMethod, in, opts)
}

func (c *UserDirectoryClient) ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c, ListUsersFullMethod, in, opts)
}

func (c *UserDirectoryClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	return invoke[CreateUserResponse](ctx, c, CreateUserFullMethod, in, opts)
}

func (c *UserDirectoryClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c, UpdateUserFullMethod, in, opts)
}

func (c *UserDirectoryClient) RemoveUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*RemoveUserResponse, error) {
	return invoke[RemoveUserResponse](ctx, c, RemoveUserFullMethod, in, opts)
}

func (c *UserDirectoryClient) UserExists(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c, UserExistsFullMethod, in, opts)
}
