package iconproxy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Proxy *Proxy
}

func NewHandler(p *Proxy) *Handler {
	return &Handler{Proxy: p}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/preview/icon", h.icon) // GET /preview/icon?url=https://...
}

func (h *Handler) icon(c *gin.Context) {
	icon, err := h.Proxy.Get(c.Request.Context(), c.Query("url"))
	if err != nil {
		if errors.Is(err, ErrBadURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Proxy.logger.Printf("[iconproxy] fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "icon fetch failed"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, icon.ContentType, icon.Body)
}
