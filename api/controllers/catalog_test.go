package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/angelmondragon/ecom-backend/internal/products"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
)

// stubCatalog embeds the interface so tests only implement what they call.
type stubCatalog struct {
	product.Service
	products   []product.ProductDTO
	detail     *product.ProductDetailDTO
	err        error
	lastSearch string
	lastID     uuid.UUID
	lastCreate product.CreateProductInput
	deleted    bool
}

func (s *stubCatalog) CreateProduct(_ context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.lastCreate = input
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: uuid.New(), Name: input.Name, PriceCents: input.PriceCents}, nil
}

func (s *stubCatalog) SearchProducts(_ context.Context, name string) ([]product.ProductDTO, error) {
	s.lastSearch = name
	return s.products, s.err
}

func (s *stubCatalog) GetProductDetail(_ context.Context, id uuid.UUID) (*product.ProductDetailDTO, error) {
	s.lastID = id
	return s.detail, s.err
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.lastID = id
	s.deleted = s.err == nil
	return s.err
}

func TestProductCreate(t *testing.T) {
	svc := &stubCatalog{}
	categoryID := uuid.New()

	resp := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/admin/product", map[string]any{
		"category_id": categoryID,
		"name":        "Widget",
		"price_cents": 1250,
		"stock":       3,
	})
	ProductCreate(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, categoryID, svc.lastCreate.CategoryID)
	var body product.ProductDTO
	decodeData(t, resp, &body)
	assert.Equal(t, "Widget", body.Name)
	assert.Equal(t, int64(1250), body.PriceCents)
}

func TestProductCreateRejectsNegativePrice(t *testing.T) {
	resp := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/admin/product", map[string]any{
		"category_id": uuid.New(),
		"name":        "Widget",
		"price_cents": -1,
	})
	ProductCreate(&stubCatalog{}, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProductSearchUsesPathSegment(t *testing.T) {
	svc := &stubCatalog{products: []product.ProductDTO{{Name: "Blue Widget"}}}

	resp := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/customer/search/widget", nil), map[string]string{"name": "widget"})
	ProductSearch(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "widget", svc.lastSearch)
	var body []product.ProductDTO
	decodeData(t, resp, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "Blue Widget", body[0].Name)
}

func TestProductDetailRejectsMalformedID(t *testing.T) {
	resp := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/customer/product/nope", nil), map[string]string{"productId": "nope"})
	ProductDetail(&stubCatalog{}, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProductDetailNotFound(t *testing.T) {
	id := uuid.New()
	svc := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	resp := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/customer/product/"+id.String(), nil), map[string]string{"productId": id.String()})
	ProductDetail(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, id, svc.lastID)
}

func TestProductDelete(t *testing.T) {
	id := uuid.New()
	svc := &stubCatalog{}

	resp := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/api/admin/product/"+id.String(), nil), map[string]string{"productId": id.String()})
	ProductDelete(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.True(t, svc.deleted)
	assert.Equal(t, id, svc.lastID)
}
