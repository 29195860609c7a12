package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/handler"
	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/userv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
}

// New は UserDirectoryService とヘルスチェックを登録した gRPC サーバーを構築します。
// 認証とアクセスログのインターセプターは opts より先に適用されます。
// subjects はトークンの主体が削除・アーカイブされていないかの確認に使います。
func New(listenAddr string, directory userv1.UserDirectoryServer, verifier handler.TokenVerifier, subjects handler.SubjectLookup, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	serverOpts := append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			handler.LoggingInterceptor(logger),
			handler.AuthInterceptor(verifier, subjects),
		),
	}, opts...)

	srv := grpc.NewServer(serverOpts...)
	userv1.RegisterUserDirectoryServer(srv, directory)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(userv1.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthSrv,
	}
}

// SetServing はヘルスチェックの状態を SERVING にします。
func (s *Server) SetServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(userv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}

	return s.Serve(ctx, lis)
}

// Serve は指定したリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	s.SetServing()
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを停止状態にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
