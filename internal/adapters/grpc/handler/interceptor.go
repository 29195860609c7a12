package handler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/userv1"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"github.com/ogurasousui/agenda-directory/internal/platform/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	requestIDHeader     = "x-request-id"
	authorizationHeader = "authorization"
	bearerPrefix        = "bearer "
)

// TokenVerifier はアクセストークンを検証します。
type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

// SubjectLookup はトークンの主体を現在のユーザー情報で確認します。
type SubjectLookup interface {
	FetchByID(ctx context.Context, id int64) (user.Detail, bool, error)
}

// publicMethods はトークンなしで呼び出せるメソッドです。
var publicMethods = map[string]struct{}{
	userv1.AuthenticateFullMethod: {},
	userv1.CreateUserFullMethod:   {},
}

func isPublic(fullMethod string) bool {
	if _, ok := publicMethods[fullMethod]; ok {
		return true
	}
	return strings.HasPrefix(fullMethod, "/"+grpc_health_v1.Health_ServiceDesc.ServiceName+"/")
}

// AuthInterceptor は Bearer トークンを検証し、Claims をコンテキストに格納します。
// 主体が削除済みなら Unauthenticated、アーカイブ済みなら PermissionDenied を返します。
// Claims の Role は現在の値に置き換えます。
func AuthInterceptor(verifier TokenVerifier, subjects SubjectLookup) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if isPublic(info.FullMethod) {
			return next(ctx, req)
		}

		raw, ok := bearerToken(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			return nil, toStatusError(err)
		}

		subject, ok, err := subjects.FetchByID(ctx, claims.UserID)
		if err != nil {
			return nil, toStatusError(err)
		}
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "token subject no longer exists")
		}
		if subject.State == user.StateArchived {
			return nil, status.Error(codes.PermissionDenied, "user is archived")
		}
		claims.Role = subject.Role

		return next(auth.ContextWithClaims(ctx, claims), req)
	}
}

func bearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	for _, v := range md.Get(authorizationHeader) {
		if len(v) > len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(v[len(bearerPrefix):]), true
		}
	}
	return "", false
}

type requestIDKey struct{}

// RequestIDFromContext はリクエストIDを返します。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingInterceptor は呼び出しごとにリクエストIDを付与し、結果を記録します。
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		requestID := incomingRequestID(ctx)
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
		if err := grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID)); err != nil {
			logger.DebugContext(ctx, "request id header not sent", slog.String("request_id", requestID), slog.Any("error", err))
		}

		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		level := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil && level == slog.LevelError {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.LogAttrs(ctx, level, "grpc call", attrs...)

		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(requestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
