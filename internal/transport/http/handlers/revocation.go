package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aritranodejs/jwt-token-revoke/internal/usecase"
)

// RevocationHandler exposes endpoints for revoking and restoring tokens.
type RevocationHandler struct {
	revocation *usecase.RevocationService
}

// NewRevocationHandler builds a handler over the revocation engine.
func NewRevocationHandler(revocation *usecase.RevocationService) *RevocationHandler {
	return &RevocationHandler{revocation: revocation}
}

// RegisterRoutes binds revocation endpoints.
func (h *RevocationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/tokens/revoke", h.Revoke)
	r.POST("/tokens/restore", h.Restore)
	r.POST("/tokens/introspect", h.Introspect)
	r.POST("/tokens/cleanup", h.Cleanup)
	r.GET("/tokens/stats", h.Stats)
}

// Revoke blacklists the supplied token until its own expiry passes.
func (h *RevocationHandler) Revoke(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Error: "token is required"})
		return
	}

	revoked, err := h.revocation.Blacklist(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_token", Error: "token cannot be decoded or has no expiry claim"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Code: "storage_unavailable", Error: "revocation could not be recorded"})
		return
	}

	c.JSON(http.StatusOK, RevokeResponse{Revoked: revoked})
}

// Restore removes the token's blacklist entry, re-admitting it until its
// natural expiry.
func (h *RevocationHandler) Restore(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Error: "token is required"})
		return
	}

	removed, err := h.revocation.Remove(c.Request.Context(), req.Token)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Code: "storage_unavailable", Error: "removal could not be recorded"})
		return
	}

	c.JSON(http.StatusOK, RestoreResponse{Removed: removed})
}

// Introspect reports whether the supplied token is currently revoked.
func (h *RevocationHandler) Introspect(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Error: "token is required"})
		return
	}

	c.JSON(http.StatusOK, IntrospectResponse{
		Blacklisted: h.revocation.IsBlacklisted(c.Request.Context(), req.Token),
	})
}

// Cleanup triggers a manual purge of expired entries.
func (h *RevocationHandler) Cleanup(c *gin.Context) {
	removed, err := h.revocation.Cleanup(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Code: "storage_unavailable", Error: "cleanup failed"})
		return
	}

	c.JSON(http.StatusOK, CleanupResponse{Removed: removed})
}

// Stats reports the current number of blacklist entries.
func (h *RevocationHandler) Stats(c *gin.Context) {
	count, err := h.revocation.Count(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Code: "storage_unavailable", Error: "stats unavailable"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Entries: count})
}
