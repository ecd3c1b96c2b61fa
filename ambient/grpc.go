package ambient

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryServerInterceptor 从 grpc 元数据读取操作人和租户
// 元数据的键不区分大小写
func UnaryServerInterceptor(keys Keys) grpc.UnaryServerInterceptor {
	keys = keys.withDefaults()
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}
		p := keys.extract(func(key string) string {
			if vs := md.Get(key); len(vs) > 0 {
				return vs[0]
			}
			return ""
		})
		if !p.IsZero() {
			ctx = With(ctx, p)
		}
		return handler(ctx, req)
	}
}
