package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopgate/internal/model"
)

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	FilterProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Brands(ctx context.Context) ([]model.Brand, error)
}

// CatalogHandler は商品カタログのHTTPハンドラー。
type CatalogHandler struct {
	service   CatalogServiceInterface
	navigator *PendingNavigator
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface, navigator *PendingNavigator) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		navigator: navigator,
	}
}

// ListProducts は条件に合致する商品一覧を返す。
// GET /api/products?search=&categoryId=&brandId=&minPrice=&maxPrice=&minRating=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseProductFilter(r)
	if !ok {
		writeInvalidRequest(w)
		return
	}

	products, err := h.service.FilterProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProduct は商品詳細を返す。
// GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeInvalidRequest(w)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListCategories は全カテゴリを返す。
// GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// ListBrands は全ブランドを返す。
// GET /api/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.Brands(r.Context())
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// parseProductFilter はクエリパラメータから絞り込み条件を組み立てる。
// 数値パラメータが解析できない場合はfalseを返す。
func parseProductFilter(r *http.Request) (model.ProductFilter, bool) {
	query := r.URL.Query()
	filter := model.ProductFilter{
		Search: query.Get("search"),
	}

	if v := query.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, false
		}
		filter.CategoryID = id
	}
	if v := query.Get("brandId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, false
		}
		filter.BrandID = id
	}
	if v := query.Get("minPrice"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return filter, false
		}
		filter.MinPrice = price
	}
	if v := query.Get("maxPrice"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return filter, false
		}
		filter.MaxPrice = price
	}
	if v := query.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, false
		}
		filter.MinRating = rating
	}

	return filter, true
}
