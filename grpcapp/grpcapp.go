package grpcapp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ProviderService is the health service name operators probe for provider availability.
const ProviderService = "matchengine.Provider"

type GrpcApp struct {
	log          *zap.Logger
	gRPCServer   *grpc.Server
	healthServer *health.Server
	addr         string
}

func New(log *zap.Logger, host string, port int, register func(*grpc.Server)) *GrpcApp {
	addr := fmt.Sprintf("%s:%d", host, port)

	gRPCServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			tracingInterceptor(),
			recoveryInterceptor(log),
			loggingInterceptor(log),
		),
	)

	if register != nil {
		register(gRPCServer)
	}

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ProviderService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gRPCServer, healthServer)

	reflection.Register(gRPCServer)

	return &GrpcApp{
		log:          log,
		gRPCServer:   gRPCServer,
		healthServer: healthServer,
		addr:         addr,
	}
}

// SetProviderStatus reports NOT_SERVING while the provider is suspended or failing.
func (a *GrpcApp) SetProviderStatus(status models.HealthStatus) {
	serving := healthpb.HealthCheckResponse_SERVING
	if status == models.HealthSuspended || status == models.HealthError {
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	a.healthServer.SetServingStatus(ProviderService, serving)
}

// WatchProvider polls the provider health snapshot until ctx is done.
func (a *GrpcApp) WatchProvider(ctx context.Context, interval time.Duration, snapshot func(context.Context) models.Health) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := models.HealthStatus("")
	for {
		status := snapshot(ctx).Status
		if status != last {
			a.log.Info("provider health changed", zap.String("status", string(status)))
			last = status
		}
		a.SetProviderStatus(status)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func tracingInterceptor() grpc.UnaryServerInterceptor {
	tracer := otel.Tracer("match-engine/grpc")

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))
		}

		ctx, span := tracer.Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		return handler(ctx, req)
	}
}

type metadataCarrier metadata.MD

func (c metadataCarrier) Get(key string) string {
	values := metadata.MD(c).Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

func (a *GrpcApp) Run() error {
	const op = "grpcapp.Run"

	l, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("gRPC server started", zap.String("addr", l.Addr().String()))

	if err := a.gRPCServer.Serve(l); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *GrpcApp) Stop() {
	a.log.Info("stopping gRPC server", zap.String("addr", a.addr))
	a.healthServer.Shutdown()
	a.gRPCServer.GracefulStop()
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			log.Error("gRPC request failed", append(fields, zap.Error(err))...)
			return resp, err
		}

		log.Info("gRPC request", fields...)
		return resp, nil
	}
}

func recoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", zap.Any("panic", r), zap.String("method", info.FullMethod))
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}
