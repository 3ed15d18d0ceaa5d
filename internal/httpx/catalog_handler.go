package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-parfum-store.git/internal/catalog"
)

type CatalogStore interface {
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error)
	GetProductByID(ctx context.Context, id string) (catalog.Product, error)
	ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)

	CreateNote(ctx context.Context, name string) (catalog.Note, error)
	UpdateNote(ctx context.Context, id, name string) (catalog.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context) ([]catalog.Note, error)

	CreateBanner(ctx context.Context, in catalog.BannerInput) (catalog.Banner, error)
	UpdateBanner(ctx context.Context, id string, in catalog.BannerInput) (catalog.Banner, error)
	DeleteBanner(ctx context.Context, id string) error
	ListBanners(ctx context.Context, activeOnly bool) ([]catalog.Banner, error)
}

type CatalogHandler struct {
	Store CatalogStore
	Log   *zap.Logger
}

// Register: surface publik, cuma baca; produk non-aktif disembunyikan.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/notes", h.listNotes)
	r.Get("/banners", h.listBanners)
}

func (h *CatalogHandler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/products", h.listAllProducts)
	r.Get("/products/{id}", h.getProductByID)

	r.Post("/notes", h.createNote)
	r.Put("/notes/{id}", h.updateNote)
	r.Delete("/notes/{id}", h.deleteNote)
	r.Get("/notes", h.listNotes)

	r.Post("/banners", h.createBanner)
	r.Put("/banners/{id}", h.updateBanner)
	r.Delete("/banners/{id}", h.deleteBanner)
	r.Get("/banners", h.listAllBanners)
}

func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// ---- products ----

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *CatalogHandler) listAllProducts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	out, err := h.Store.ListProducts(ctx, catalog.ProductFilter{
		NoteSlug:   q.Get("note"),
		Query:      q.Get("q"),
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	p, err := h.Store.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	if !p.Active {
		writeError(w, http.StatusNotFound, "not_found", "catalog entry not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// getProductByID dipakai form edit back office, produk non-aktif ikut tampil.
func (h *CatalogHandler) getProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	p, err := h.Store.GetProductByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func decodeProductInput(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, bool) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json", nil)
		return in, false
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "name is required", nil)
		return in, false
	}
	if in.PriceCents < 0 || in.Stock < 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "price_cents and stock must be non-negative", nil)
		return in, false
	}
	return in, true
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductInput(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	p, err := h.Store.CreateProduct(ctx, in)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductInput(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	p, err := h.Store.UpdateProduct(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Store.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- fragrance notes ----

type noteReq struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "name is required", nil)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	n, err := h.Store.CreateNote(ctx, req.Name)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *CatalogHandler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "name is required", nil)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	n, err := h.Store.UpdateNote(ctx, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *CatalogHandler) deleteNote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Store.DeleteNote(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listNotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Store.ListNotes(ctx)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Note{}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- hero banners ----

func decodeBannerInput(w http.ResponseWriter, r *http.Request) (catalog.BannerInput, bool) {
	var in catalog.BannerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json", nil)
		return in, false
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "title is required", nil)
		return in, false
	}
	return in, true
}

func (h *CatalogHandler) createBanner(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBannerInput(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	b, err := h.Store.CreateBanner(ctx, in)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *CatalogHandler) updateBanner(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBannerInput(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	b, err := h.Store.UpdateBanner(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *CatalogHandler) deleteBanner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Store.DeleteBanner(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listBanners(w http.ResponseWriter, r *http.Request) {
	h.banners(w, r, true)
}

func (h *CatalogHandler) listAllBanners(w http.ResponseWriter, r *http.Request) {
	h.banners(w, r, false)
}

func (h *CatalogHandler) banners(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Store.ListBanners(ctx, activeOnly)
	if err != nil {
		writeCatalogError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Banner{}
	}
	writeJSON(w, http.StatusOK, out)
}
