package ambient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestWithFrom(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)

	p := Principal{ActorID: "u1", TenantID: "t1", TenantName: "acme"}
	got, ok := From(With(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, Principal{}.IsZero())
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got Principal
	var found bool
	r := gin.New()
	r.Use(GinMiddleware(Keys{TenantName: "X-Org-Name"}))
	r.GET("/ping", func(c *gin.Context) {
		got, found = From(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Actor-Id", "u1")
	req.Header.Set("X-Tenant-Id", "42")
	req.Header.Set("X-Org-Name", "acme")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, found)
	assert.Equal(t, Principal{ActorID: "u1", TenantID: "42", TenantName: "acme"}, got)

	// 没有请求头时不写入
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.False(t, found)
}

func TestUnaryServerInterceptor(t *testing.T) {
	interceptor := UnaryServerInterceptor(Keys{})

	var got Principal
	var found bool
	handler := func(ctx context.Context, req any) (any, error) {
		got, found = From(ctx)
		return req, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"x-actor-id", "u2",
		"x-tenant-id", "7",
	))
	resp, err := interceptor(ctx, "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "req", resp)
	require.True(t, found)
	assert.Equal(t, Principal{ActorID: "u2", TenantID: "7"}, got)

	_, err = interceptor(context.Background(), "req", &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.False(t, found)
}
