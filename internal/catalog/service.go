// Package catalog は商品カタログ（商品・カテゴリ・ブランド）の参照機能を提供する。
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

// Service はカタログ参照のビジネスロジックを提供する。
// バックエンドから受け取った商品説明のリッチテキストはサニタイズして返す。
type Service struct {
	api       *apiclient.Client
	sanitizer *bluemonday.Policy
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:       api,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// FilterProducts は条件に合致する商品一覧を取得する。
// ゼロ値の条件はクエリに含めない。
func (s *Service) FilterProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.CategoryID != 0 {
		query.Set("categoryId", strconv.FormatInt(filter.CategoryID, 10))
	}
	if filter.BrandID != 0 {
		query.Set("brandId", strconv.FormatInt(filter.BrandID, 10))
	}
	if !filter.MinPrice.IsZero() {
		query.Set("minPrice", filter.MinPrice.String())
	}
	if !filter.MaxPrice.IsZero() {
		query.Set("maxPrice", filter.MaxPrice.String())
	}
	if filter.MinRating != 0 {
		query.Set("minRating", strconv.FormatFloat(filter.MinRating, 'f', -1, 64))
	}

	path := "api/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	envelope, err := apiclient.GetEnvelope[[]model.Product](ctx, s.api, path)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess {
		return nil, fmt.Errorf("product filter rejected by backend: %s", envelope.ErrorMessage)
	}
	if envelope.Result == nil {
		return nil, nil
	}

	products := *envelope.Result
	for i := range products {
		products[i].Description = s.sanitizer.Sanitize(products[i].Description)
	}
	return products, nil
}

// GetProduct は指定IDの商品を取得する。
// 存在しない場合は404として分類器を通過したエラーが返る。
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	envelope, err := apiclient.GetEnvelope[model.Product](ctx, s.api, fmt.Sprintf("api/products/%d", id))
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("product lookup rejected by backend: %s", envelope.ErrorMessage)
	}

	product := envelope.Result
	product.Description = s.sanitizer.Sanitize(product.Description)
	return product, nil
}

// Categories は全カテゴリを取得する。
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	envelope, err := apiclient.GetEnvelope[[]model.Category](ctx, s.api, "api/categories")
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("category listing rejected by backend: %s", envelope.ErrorMessage)
	}
	return *envelope.Result, nil
}

// Brands は全ブランドを取得する。
func (s *Service) Brands(ctx context.Context) ([]model.Brand, error) {
	envelope, err := apiclient.GetEnvelope[[]model.Brand](ctx, s.api, "api/brands")
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("brand listing rejected by backend: %s", envelope.ErrorMessage)
	}
	return *envelope.Result, nil
}
