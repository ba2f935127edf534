// Package wishlist はバックエンドのウィッシュリストAPIへの橋渡しを行う。
package wishlist

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

// Service はウィッシュリスト操作のビジネスロジックを提供する。
type Service struct {
	api *apiclient.Client
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Toggle は商品のウィッシュリスト登録状態を反転し、反転後の一覧を返す。
func (s *Service) Toggle(ctx context.Context, productID int64) ([]model.WishlistItem, error) {
	envelope, err := apiclient.PostEnvelope[[]model.WishlistItem](ctx, s.api, fmt.Sprintf("api/wishlist/toggle/%d", productID), nil)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("wishlist toggle rejected by backend: %s", envelope.ErrorMessage)
	}
	return *envelope.Result, nil
}

// List は現在のウィッシュリストを取得する。
func (s *Service) List(ctx context.Context) ([]model.WishlistItem, error) {
	envelope, err := apiclient.GetEnvelope[[]model.WishlistItem](ctx, s.api, "api/wishlist")
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess {
		return nil, fmt.Errorf("wishlist listing rejected by backend: %s", envelope.ErrorMessage)
	}
	if envelope.Result == nil {
		return nil, nil
	}
	return *envelope.Result, nil
}
