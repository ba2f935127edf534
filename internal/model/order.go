package model

import "github.com/shopspring/decimal"

// Order はバックエンドに作成された注文レコードを表す。
// 作成後はクライアント側からは不変として扱う。
type Order struct {
	ID              int64           `json:"id"`
	ShippingAddress string          `json:"shippingAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
}

// PaymentSession はホスト型決済ページへのリダイレクト先を表す。
// 注文作成後に1対1で生成され、リダイレクトで即時に消費される。
// ゲートウェイ側では保持しない。
type PaymentSession struct {
	URL string `json:"url"`
}
