package cache

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createSessionRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Data     string `json:"data"`
}

type cacheValueRequest struct {
	Key   string          `json:"key" binding:"required"`
	Value json.RawMessage `json:"value"`
	TTL   *int64          `json:"ttl"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/cache")

	g.GET("/sessions", h.listSessions)
	g.GET("/sessions/:id", h.getSession)
	g.GET("/sessions/user/:userId", h.listUserSessions)
	g.POST("/sessions", h.createSession)
	g.DELETE("/sessions/:id", h.deleteSession)

	g.POST("/values", h.setValue)
	g.GET("/values/:key", h.getValue)
	g.DELETE("/values/:key", h.deleteValue)
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.service.GetAllSessions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) listUserSessions(c *gin.Context) {
	sessions, err := h.service.GetSessionsByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.UserID, req.Username, req.Data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setValue(c *gin.Context) {
	var req cacheValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	value := req.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}

	if err := h.service.CacheValue(c.Request.Context(), req.Key, value, req.TTL); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cached", "key": req.Key})
}

func (h *Handler) getValue(c *gin.Context) {
	value, err := h.service.GetCachedValue(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

func (h *Handler) deleteValue(c *gin.Context) {
	if err := h.service.DeleteCachedValue(c.Request.Context(), c.Param("key")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case errors.Is(err, ErrInvalidTTL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Error("cache request failed", map[string]any{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"error":  err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
