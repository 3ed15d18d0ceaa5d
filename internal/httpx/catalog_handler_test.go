package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-parfum-store.git/internal/catalog"
)

type stubCatalog struct {
	createProductFn func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	deleteProductFn func(ctx context.Context, id string) error
	getBySlugFn     func(ctx context.Context, slug string) (catalog.Product, error)
	getByIDFn       func(ctx context.Context, id string) (catalog.Product, error)
	listProductsFn  func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	createNoteFn    func(ctx context.Context, name string) (catalog.Note, error)
}

func (s *stubCatalog) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	if s.createProductFn != nil {
		return s.createProductFn(ctx, in)
	}
	return catalog.Product{}, nil
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error) {
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id string) error {
	if s.deleteProductFn != nil {
		return s.deleteProductFn(ctx, id)
	}
	return nil
}

func (s *stubCatalog) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	if s.getBySlugFn != nil {
		return s.getBySlugFn(ctx, slug)
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubCatalog) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubCatalog) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	if s.listProductsFn != nil {
		return s.listProductsFn(ctx, f)
	}
	return nil, nil
}

func (s *stubCatalog) CreateNote(ctx context.Context, name string) (catalog.Note, error) {
	if s.createNoteFn != nil {
		return s.createNoteFn(ctx, name)
	}
	return catalog.Note{}, nil
}

func (s *stubCatalog) UpdateNote(ctx context.Context, id, name string) (catalog.Note, error) {
	return catalog.Note{}, catalog.ErrNotFound
}

func (s *stubCatalog) DeleteNote(ctx context.Context, id string) error { return nil }

func (s *stubCatalog) ListNotes(ctx context.Context) ([]catalog.Note, error) { return nil, nil }

func (s *stubCatalog) CreateBanner(ctx context.Context, in catalog.BannerInput) (catalog.Banner, error) {
	return catalog.Banner{ID: "b-1", Title: in.Title, Position: in.Position, Active: in.Active}, nil
}

func (s *stubCatalog) UpdateBanner(ctx context.Context, id string, in catalog.BannerInput) (catalog.Banner, error) {
	return catalog.Banner{}, catalog.ErrNotFound
}

func (s *stubCatalog) DeleteBanner(ctx context.Context, id string) error { return nil }

func (s *stubCatalog) ListBanners(ctx context.Context, activeOnly bool) ([]catalog.Banner, error) {
	return nil, nil
}

func newCatalogRouter(store CatalogStore) *chi.Mux {
	h := &CatalogHandler{Store: store}
	r := chi.NewRouter()
	h.Register(r)
	r.Route("/admin", func(ar chi.Router) { h.RegisterAdmin(ar) })
	return r
}

func TestPublicListForcesActiveFilter(t *testing.T) {
	var gotFilter catalog.ProductFilter
	store := &stubCatalog{
		listProductsFn: func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
			gotFilter = f
			return nil, nil
		},
	}
	r := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?note=vetiver&q=oud&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotFilter.ActiveOnly)
	assert.Equal(t, "vetiver", gotFilter.NoteSlug)
	assert.Equal(t, "oud", gotFilter.Query)
	assert.Equal(t, 10, gotFilter.Limit)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAdminListSeesInactive(t *testing.T) {
	var gotFilter catalog.ProductFilter
	store := &stubCatalog{
		listProductsFn: func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
			gotFilter = f
			return nil, nil
		},
	}
	r := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotFilter.ActiveOnly)
}

func TestGetProductHidesInactive(t *testing.T) {
	store := &stubCatalog{
		getBySlugFn: func(ctx context.Context, slug string) (catalog.Product, error) {
			return catalog.Product{ID: "p-1", Slug: slug, Name: "Vetiver 46", Active: false}, nil
		},
	}
	r := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/vetiver-46", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGetProductShowsInactive(t *testing.T) {
	store := &stubCatalog{
		getByIDFn: func(ctx context.Context, id string) (catalog.Product, error) {
			return catalog.Product{ID: id, Slug: "vetiver-46", Name: "Vetiver 46", Active: false}, nil
		},
	}
	r := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products/p-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"vetiver-46"`)
}

func TestCreateProductValidation(t *testing.T) {
	r := newCatalogRouter(&stubCatalog{})

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{nope`},
		{"missing name", `{"price_cents":100,"stock":1}`},
		{"negative price", `{"name":"Oud","price_cents":-1,"stock":1}`},
		{"negative stock", `{"name":"Oud","price_cents":100,"stock":-5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	store := &stubCatalog{
		createProductFn: func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
			return catalog.Product{ID: "p-1", Slug: "vetiver-46", Name: in.Name, PriceCents: in.PriceCents}, nil
		},
	}
	r := newCatalogRouter(store)

	body := `{"name":"Vetiver 46","price_cents":25900,"stock":10,"active":true}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "vetiver-46", got.Slug)
}

func TestDeleteProductConflict(t *testing.T) {
	store := &stubCatalog{
		deleteProductFn: func(ctx context.Context, id string) error { return catalog.ErrInUse },
	}
	r := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/products/p-1", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestCreateNoteRequiresName(t *testing.T) {
	r := newCatalogRouter(&stubCatalog{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/notes", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBanner(t *testing.T) {
	r := newCatalogRouter(&stubCatalog{})

	body := `{"title":"Summer Oud","position":1,"active":true}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/banners", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got catalog.Banner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Summer Oud", got.Title)
}
