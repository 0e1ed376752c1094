package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/pregled/internal/imaging"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/paging"
	"github.com/erazemk/pregled/internal/state"
	"github.com/erazemk/pregled/internal/table"
)

// ImageFetcher downloads a remote product image.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// ListData is shared by the product and user list pages.
type ListData struct {
	PageData
	Query  listQuery
	Table  table.View
	Page   paging.Page
	Status state.Status
}

// ProductsPage handles GET /products.
func (s *Server) ProductsPage(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery("/products", r.URL.Query())
	cols := productColumns()

	rows := paging.Filter(s.App.Products(), q.Search, func(p model.Product) string { return p.Title })
	rows = table.SortRows(rows, cols, q.Sort)
	page := paging.NewPage(len(rows), q.Page, s.ProductPageSize)
	q.Page = page.Number

	status := s.App.ProductStatus()
	empty := "No products match your search."
	if status.Count == 0 {
		empty = "No data available."
	}

	data := &ListData{
		PageData: s.page(w, r, "Products", TabProducts),
		Query:    q,
		Page:     page,
		Status:   status,
		Table: table.Render(paging.Paginate(rows, page.Number, page.Size), cols, table.Options[model.Product]{
			EmptyMessage: empty,
			Actions:      &table.Actions[model.Product]{View: func(p model.Product) string { return productURL(p.ID) }},
			RowHref:      func(p model.Product) string { return productURL(p.ID) },
			Sort:         q.Sort,
			SortURL:      q.SortURL,
		}),
	}
	s.Templates.Render(w, http.StatusOK, "products.html", data)
}

// ProductDetailData is the data for the product detail page.
type ProductDetailData struct {
	PageData
	Product model.Product
	Back    string
}

// ProductDetailPage handles GET /products/{id}.
func (s *Server) ProductDetailPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.App.Product(model.ID(r.PathValue("id")))
	if !ok {
		http.NotFound(w, r)
		return
	}

	back := "/products"
	if ref := r.Referer(); ref != "" {
		if i := strings.Index(ref, "/products?"); i >= 0 {
			back = safeRedirect(ref[i:], back)
		}
	}

	s.Templates.Render(w, http.StatusOK, "product_detail.html", &ProductDetailData{
		PageData: s.page(w, r, p.Title, TabProducts),
		Product:  p,
		Back:     back,
	})
}

// ProductThumbnail handles GET /products/{id}/thumbnail. The catalog image
// is downloaded once, scaled down and kept in the thumbnail cache.
// ?size=detail returns the larger variant used on the detail page.
func (s *Server) ProductThumbnail(w http.ResponseWriter, r *http.Request) {
	p, ok := s.App.Product(model.ID(r.PathValue("id")))
	if !ok || p.Thumbnail == "" || s.Images == nil {
		http.NotFound(w, r)
		return
	}

	size, variant := imaging.ThumbnailSize, "thumb"
	if r.URL.Query().Get("size") == "detail" {
		size, variant = imaging.DetailSize, "detail"
	}

	data, err := s.Thumbnails.Get(p.ID.String()+":"+variant, func() ([]byte, error) {
		raw, err := s.Images.FetchImage(r.Context(), p.Thumbnail)
		if err != nil {
			return nil, err
		}
		return imaging.Thumbnail(bytes.NewReader(raw), size)
	})
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			http.Error(w, "unsupported image", http.StatusUnsupportedMediaType)
			return
		}
		slog.Warn("failed to load thumbnail", "product", p.ID, "error", err)
		http.Error(w, "image unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", imaging.MIME)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
