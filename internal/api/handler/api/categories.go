package api

import (
	"fmt"
	"net/http"

	"github.com/newthinker/screener/internal/api/response"
	"github.com/newthinker/screener/internal/core"
)

// CategoriesHandler serves the category registry.
type CategoriesHandler struct {
	app Screener
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(app Screener) *CategoriesHandler {
	return &CategoriesHandler{app: app}
}

// List returns every category in registry order.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	reg := h.app.Registry()
	response.JSON(w, http.StatusOK, map[string]any{
		"categories": reg.Categories(),
		"total":      reg.Len(),
	})
}

// Get returns one category by key.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	def, ok := h.app.Registry().Get(key)
	if !ok {
		response.Error(w, http.StatusNotFound, unknownCategory(key))
		return
	}

	response.JSON(w, http.StatusOK, def)
}

func unknownCategory(key string) error {
	return core.WrapError(core.ErrCategoryNotFound, fmt.Errorf("unknown category %q", key))
}
