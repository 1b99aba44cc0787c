package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/books"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/cache"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/db"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/events"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/middleware"
)

type discardPublisher struct{}

func (discardPublisher) Publish(events.EventType, int64, string, string) {}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(sqlDB, "sqlite"))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newRouter(
		books.NewService(books.NewSQLRepository(sqlDB), discardPublisher{}),
		cache.NewService(cache.NewRedisSessionStore(rdb), cache.NewRedisValueStore(rdb)),
	)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestOperationalRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := get(r, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, welcome, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))

	rec = get(r, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutesAreMounted(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/api/books").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/cache/sessions").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/cache/values/missing").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/observability/combined").Code)

	rec := get(r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `catalog_http_requests_total{method="GET",path="/api/books",status="200"}`))
}
