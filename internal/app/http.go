package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/books"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/cache"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/metrics"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/middleware"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/observability"
)

const welcome = "Welcome to the catalog demo: books, cache and book events."

func newRouter(bookService *books.Service, cacheService *cache.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())

	// ----------------------------
	// Operational Routes
	// ----------------------------

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, welcome)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ----------------------------
	// API Routes
	// ----------------------------

	books.NewHandler(bookService).RegisterRoutes(router)
	cache.NewHandler(cacheService).RegisterRoutes(router)
	observability.NewHandler().RegisterRoutes(router)

	return router
}
