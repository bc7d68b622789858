package handler

import (
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/quickorder"
	"github.com/go-chi/chi/v5"
)

// Menu is the read-only catalog the cart and menu handlers look items up in.
// Satisfied by *catalog.Catalog.
type Menu interface {
	Item(id string) (pos.MenuItem, bool)
	Modifiers(item pos.MenuItem, ids []string) ([]pos.Modifier, error)
	ItemsInCategory(category string) []pos.MenuItem
	ListCategories() []pos.Category
}

// MenuHandler serves the menu.
type MenuHandler struct {
	menu    Menu
	matcher *quickorder.Matcher
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(m Menu) *MenuHandler {
	return &MenuHandler{menu: m, matcher: quickorder.New(m.ItemsInCategory(""))}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Get("/menu/categories", h.Categories)
	r.Get("/menu/search", h.Search)
	r.Get("/menu/{id}", h.Get)
}

// List handles GET /menu?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.menu.ItemsInCategory(r.URL.Query().Get("category"))
	if items == nil {
		items = []pos.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Categories handles GET /menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.menu.ListCategories())
}

type searchResponse struct {
	Status     string         `json:"status"`
	Item       *pos.MenuItem  `json:"item,omitempty"`
	Candidates []pos.MenuItem `json:"candidates,omitempty"`
}

// Search handles GET /menu/search?q=, resolving free text to a menu item.
func (h *MenuHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	res := h.matcher.Match(q)
	writeJSON(w, http.StatusOK, searchResponse{Status: res.Status.String(), Item: res.Item, Candidates: res.Candidates})
}

// Get handles GET /menu/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.menu.Item(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}
