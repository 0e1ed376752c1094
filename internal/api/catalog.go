package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/paging"
	"github.com/erazemk/pregled/internal/state"
)

// maxProductLimit caps ?limit on the product listing.
const maxProductLimit = 100

// CatalogHandler exposes the loaded snapshots read-only.
type CatalogHandler struct {
	App *state.App
}

type productListing struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Skip     int             `json:"skip"`
	Limit    int             `json:"limit"`
}

// Products handles GET /api/products?q=&page=&limit=. The response has the
// same envelope as the public catalog.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 0)
	if limit <= 0 || limit > maxProductLimit {
		limit = maxProductLimit
	}

	products := paging.Filter(h.App.Products(), q.Get("q"), func(p model.Product) string { return p.Title })
	page := paging.NewPage(len(products), queryInt(q.Get("page"), 1), limit)
	items := paging.Paginate(products, page.Number, limit)
	if items == nil {
		items = []model.Product{}
	}

	jsonResponse(w, http.StatusOK, productListing{
		Products: items,
		Total:    len(products),
		Skip:     (page.Number - 1) * limit,
		Limit:    limit,
	})
}

// Product handles GET /api/products/{id}.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, ok := h.App.Product(model.ID(r.PathValue("id")))
	if !ok {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Dashboard handles GET /api/dashboard.
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.App.Summary())
}

// Refresh handles POST /api/refresh. Both collections are reloaded; the
// response reports each one.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Load(r.Context()); err != nil {
		slog.Warn("refresh incomplete", "error", err)
	}
	h.Health(w, r)
}

type collectionHealth struct {
	Loaded   bool       `json:"loaded"`
	Count    int        `json:"count"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type healthResponse struct {
	Status   string           `json:"status"`
	Products collectionHealth `json:"products"`
	Users    collectionHealth `json:"users"`
}

// Health handles GET /api/health. Status is "ok" when both collections are
// loaded and their last reload succeeded, "degraded" otherwise.
func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Products: healthOf(h.App.ProductStatus()),
		Users:    healthOf(h.App.UserStatus()),
	}
	for _, c := range []collectionHealth{resp.Products, resp.Users} {
		if !c.Loaded || c.Error != "" {
			resp.Status = "degraded"
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

func healthOf(s state.Status) collectionHealth {
	c := collectionHealth{Loaded: s.Loaded, Count: s.Count}
	if s.Loaded {
		t := s.LoadedAt.UTC()
		c.LoadedAt = &t
	}
	if s.Err != nil {
		c.Error = s.Err.Error()
	}
	return c
}

func queryInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
