// Package cart はバックエンドのカートAPIへの橋渡しを行う。
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

// AddItemInput はカートへの商品追加リクエスト。
type AddItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Service はカート操作のビジネスロジックを提供する。
type Service struct {
	api *apiclient.Client
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// GetCart は指定ユーザーのカートを取得する。
func (s *Service) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	envelope, err := apiclient.GetEnvelope[model.Cart](ctx, s.api, "api/cart/user/"+userID)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("cart lookup rejected by backend: %s", envelope.ErrorMessage)
	}
	return envelope.Result, nil
}

// AddItem はカートに商品を追加し、更新後のカートを返す。
func (s *Service) AddItem(ctx context.Context, input AddItemInput) (*model.Cart, error) {
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	envelope, err := apiclient.PostEnvelope[model.Cart](ctx, s.api, "api/cart/items", input)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("cart update rejected by backend: %s", envelope.ErrorMessage)
	}
	return envelope.Result, nil
}

// RemoveItem はカートから商品を取り除く。
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	envelope, err := apiclient.PostEnvelope[model.Cart](ctx, s.api, fmt.Sprintf("api/cart/items/%d/remove", itemID), nil)
	if err != nil {
		return err
	}
	if !envelope.IsSuccess {
		return fmt.Errorf("cart item removal rejected by backend: %s", envelope.ErrorMessage)
	}
	return nil
}

// Total はバックエンドが算出したカート合計金額を返す。
// ゲートウェイ側では明細からの再計算を行わない。
func (s *Service) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.TotalAmount, nil
}
