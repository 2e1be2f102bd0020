package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"charselect/internal/dataset"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/datasets", h.datasets)                                   // GET /datasets
	r.GET("/data/:name", h.data)                                     // GET /data/genshin.json
	r.GET("/character_tag_selector/characters", h.characters)        // GET ...?json_file=
	r.GET("/character_tag_selector/characters/all", h.allCharacters) // GET .../all
}

func (h *Handler) datasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"files": h.Store.Files()})
}

func (h *Handler) data(c *gin.Context) {
	raw, err := h.Store.Raw(c.Param("name"))
	switch {
	case err == nil:
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	case errors.Is(err, dataset.ErrName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset name"})
	case errors.Is(err, dataset.ErrShape):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "dataset is not a JSON array"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	}
}

func (h *Handler) characters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"characters": h.Store.Characters(c.Query("json_file"))})
}

func (h *Handler) allCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"characters": h.Store.AllCharacters()})
}
