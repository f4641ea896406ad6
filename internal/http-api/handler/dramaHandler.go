package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dramahub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type DramaHandler struct {
	svc service.DramaService
}

func NewDramaHandler(svc service.DramaService) *DramaHandler {
	return &DramaHandler{svc: svc}
}

func (h *DramaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
	rg.GET("/popular", h.Popular)
	rg.GET("/trending", h.Trending)
	rg.GET("/:tmdb_id", h.Get)
	rg.GET("/:tmdb_id/providers", h.Providers)
}

// Get serves GET /api/dramas/:tmdb_id?force=&language=
func (h *DramaHandler) Get(c *gin.Context) {
	tmdbID, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tmdb id"})
		return
	}

	force := false
	if f := c.Query("force"); f != "" {
		if parsed, err := strconv.ParseBool(f); err == nil {
			force = parsed
		}
	}
	language := strings.TrimSpace(c.Query("language"))

	// A refresh can fan out to several upstream calls, so this budget is
	// wider than the list endpoints'.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	resp, err := h.svc.GetByTMDBID(ctx, tmdbID, force, language)
	if err != nil {
		if errors.Is(err, service.ErrDramaUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "drama not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search serves GET /api/dramas/search?q=&page=
func (h *DramaHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	page := parsePage(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.svc.Search(ctx, query, page)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Popular serves GET /api/dramas/popular?page=
func (h *DramaHandler) Popular(c *gin.Context) {
	page := parsePage(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.svc.GetPopular(ctx, page)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Trending serves GET /api/dramas/trending
func (h *DramaHandler) Trending(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.svc.GetTrending(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Providers serves GET /api/dramas/:tmdb_id/providers
func (h *DramaHandler) Providers(c *gin.Context) {
	tmdbID, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tmdb id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.svc.GetWatchProviders(ctx, tmdbID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parsePage(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}
