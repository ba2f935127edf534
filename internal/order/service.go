// Package order はバックエンドの注文APIへの橋渡しを行う。
package order

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

type createOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

// Service は注文操作のビジネスロジックを提供する。
type Service struct {
	api *apiclient.Client
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Create は配送先を添えて注文を作成する。
// エンベロープ失敗や空レスポンスはエラーに畳み込み、
// 呼び出し側が成功時のみ注文IDを得られるようにする。
func (s *Service) Create(ctx context.Context, shippingAddress string) (*model.Order, error) {
	envelope, err := apiclient.PostEnvelope[model.Order](ctx, s.api, "api/orders", createOrderRequest{ShippingAddress: shippingAddress})
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("order creation rejected by backend: %s", envelope.ErrorMessage)
	}
	if envelope.Result.ID == 0 {
		return nil, fmt.Errorf("order creation returned no order id")
	}
	return envelope.Result, nil
}

// Get は指定IDの注文を取得する。
func (s *Service) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	envelope, err := apiclient.GetEnvelope[model.Order](ctx, s.api, fmt.Sprintf("api/orders/%d", orderID))
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil {
		return nil, fmt.Errorf("order lookup rejected by backend: %s", envelope.ErrorMessage)
	}
	return envelope.Result, nil
}
