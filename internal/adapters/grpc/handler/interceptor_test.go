package handler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/userv1"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"github.com/ogurasousui/agenda-directory/internal/platform/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const interceptorSecret = "0123456789abcdef0123456789abcdef"

func passthrough(ctx context.Context, req any) (any, error) {
	claims, _ := auth.ClaimsFromContext(ctx)
	return claims, nil
}

type stubSubjects map[int64]user.Detail

func (s stubSubjects) FetchByID(ctx context.Context, id int64) (user.Detail, bool, error) {
	d, ok := s[id]
	return d, ok, nil
}

func TestAuthInterceptor(t *testing.T) {
	t.Parallel()

	issuer := auth.NewIssuer(interceptorSecret, time.Hour)
	token, _, err := issuer.Issue(user.User{ID: 42, Role: user.RoleAdmin})
	require.NoError(t, err)

	subjects := stubSubjects{42: {ID: 42, Role: user.RoleAdmin, State: user.StateActive}}
	interceptor := AuthInterceptor(issuer, subjects)
	protected := &grpc.UnaryServerInfo{FullMethod: userv1.GetUserFullMethod}

	t.Run("public method", func(t *testing.T) {
		t.Parallel()
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: userv1.AuthenticateFullMethod}, passthrough)
		assert.NoError(t, err)

		_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, passthrough)
		assert.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		_, err := interceptor(context.Background(), nil, protected, passthrough)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, protected, passthrough)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer "+token))
		resp, err := interceptor(ctx, nil, protected, passthrough)
		require.NoError(t, err)
		assert.Equal(t, auth.Claims{UserID: 42, Role: user.RoleAdmin}, resp)
	})
}

func TestAuthInterceptor_ChecksCurrentSubject(t *testing.T) {
	t.Parallel()

	issuer := auth.NewIssuer(interceptorSecret, time.Hour)
	protected := &grpc.UnaryServerInfo{FullMethod: userv1.ListUsersFullMethod}
	subjects := stubSubjects{
		1: {ID: 1, Role: user.RoleUser, State: user.StateArchived},
		2: {ID: 2, Role: user.RoleUser, State: user.StateActive},
	}
	interceptor := AuthInterceptor(issuer, subjects)

	tests := map[string]struct {
		issued user.User
		code   codes.Code
	}{
		"archived after issue": {issued: user.User{ID: 1, Role: user.RoleUser}, code: codes.PermissionDenied},
		"deleted after issue":  {issued: user.User{ID: 3, Role: user.RoleUser}, code: codes.Unauthenticated},
		"role refreshed":       {issued: user.User{ID: 2, Role: user.RoleAdmin}, code: codes.OK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			token, _, err := issuer.Issue(tc.issued)
			require.NoError(t, err)

			ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
			resp, err := interceptor(ctx, nil, protected, passthrough)
			require.Equal(t, tc.code, status.Code(err), "err: %v", err)
			if tc.code == codes.OK {
				assert.Equal(t, auth.Claims{UserID: 2, Role: user.RoleUser}, resp)
			}
		})
	}
}

func TestLoggingInterceptor_RequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	interceptor := LoggingInterceptor(logger)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "req-1"))
	var seen string
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: userv1.ListUsersFullMethod}, func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, status.Error(codes.NotFound, "missing")
	})

	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "req-1", seen)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"code":"NotFound"`)
	assert.Contains(t, buf.String(), userv1.ListUsersFullMethod)
}

func TestLoggingInterceptor_GeneratesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	interceptor := LoggingInterceptor(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	var seen string
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: userv1.GetUserFullMethod}, func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 36)
	assert.Contains(t, buf.String(), "request id header not sent")
}
