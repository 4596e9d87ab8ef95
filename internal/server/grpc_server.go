package server

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/cutmatch/cutmatch-api/internal/config"
	"github.com/cutmatch/cutmatch-api/internal/logger"
)

// NewGRPCServer builds the ops server: every registrar plus reflection for grpcurl.
func NewGRPCServer(registrars ...Registrar) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(recoverUnary, logUnary))
	for _, r := range registrars {
		r.Register(s)
	}
	reflection.Register(s)
	return s
}

// StartGRPCServer listens on GRPC_HOST:GRPC_PORT and blocks until s stops.
func StartGRPCServer(cfg *config.Config, s *grpc.Server) error {
	addr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(lis)
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)
	logger.Debug("grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

func recoverUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc panic", "method", info.FullMethod, "panic", r)
			err = status.Errorf(codes.Internal, "internal error")
		}
	}()
	return next(ctx, req)
}
