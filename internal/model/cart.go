package model

import "github.com/shopspring/decimal"

// CartItem はカート内の1商品を表す。
type CartItem struct {
	ID          int64           `json:"id"`
	CartID      int64           `json:"cartId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// Cart はユーザーのカートを表す。
// TotalAmountはバックエンドが算出した正式な合計金額であり、
// ゲートウェイ側で再計算しない。
type Cart struct {
	ID          int64           `json:"id"`
	AppUserID   string          `json:"appUserId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CartItems   []CartItem      `json:"cartItems,omitempty"`
}

// WishlistItem はウィッシュリスト内の1商品を表す。
type WishlistItem struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"productId"`
}
