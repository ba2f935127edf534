// Package payment はホスト型決済セッションの発行を担う。
package payment

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

// Service は決済セッション発行のビジネスロジックを提供する。
type Service struct {
	api *apiclient.Client
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// CreateSession は注文に紐づく決済セッションを発行する。
// このエンドポイントだけはエンベロープではなく素のJSONを返す。
func (s *Service) CreateSession(ctx context.Context, orderID int64) (*model.PaymentSession, error) {
	session, err := apiclient.PostJSON[model.PaymentSession](ctx, s.api, fmt.Sprintf("api/stripe/create-session/%d", orderID), nil)
	if err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("payment session has no redirect url")
	}
	return session, nil
}
