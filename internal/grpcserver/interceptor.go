package grpcserver

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// checkIP проверяет, что x-real-ip из метаданных входит в доверенную подсеть.
func checkIP(ctx context.Context, trustedSubnet *net.IPNet) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.PermissionDenied, "missing metadata")
	}

	values := md.Get("x-real-ip")
	if len(values) == 0 {
		return status.Error(codes.PermissionDenied, "missing x-real-ip")
	}

	ip := net.ParseIP(strings.TrimSpace(values[0]))
	if ip == nil || !trustedSubnet.Contains(ip) {
		return status.Error(codes.PermissionDenied, "ip not allowed")
	}
	return nil
}

// IPSubnetInterceptor проверяет IP-адрес клиента из метаданных для унарных вызовов.
// Если подсеть не задана, пропускает все запросы.
func IPSubnetInterceptor(trustedSubnet *net.IPNet) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if trustedSubnet == nil {
			return handler(ctx, req)
		}
		if err := checkIP(ctx, trustedSubnet); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// IPSubnetStreamInterceptor — то же для потоковых вызовов (health Watch).
func IPSubnetStreamInterceptor(trustedSubnet *net.IPNet) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if trustedSubnet == nil {
			return handler(srv, ss)
		}
		if err := checkIP(ss.Context(), trustedSubnet); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}
