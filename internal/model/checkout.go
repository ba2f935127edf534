package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutState はチェックアウトウィザードの状態を表す。
type CheckoutState string

const (
	// CheckoutStateAddress は住所入力ステップ（初期状態）を示す。
	CheckoutStateAddress CheckoutState = "address"
	// CheckoutStateSummary は注文内容確認ステップを示す。
	CheckoutStateSummary CheckoutState = "summary"
	// CheckoutStatePlacing は注文作成呼び出しの実行中を示す。
	CheckoutStatePlacing CheckoutState = "placing"
	// CheckoutStateRedirecting は決済セッション作成呼び出しの実行中を示す。
	CheckoutStateRedirecting CheckoutState = "redirecting"
	// CheckoutStateCompleted は外部決済ページへのリダイレクトによる完了を示す。
	CheckoutStateCompleted CheckoutState = "completed"
	// CheckoutStateFailed はリモート呼び出しの失敗による終了を示す。
	CheckoutStateFailed CheckoutState = "failed"
)

// IsTerminal は終端状態かどうかを返す。
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCompleted || s == CheckoutStateFailed
}

// String はログ出力用の文字列表現を返す。
func (s CheckoutState) String() string {
	return string(s)
}

// DeliveryType は配送種別を表す。
type DeliveryType string

const (
	// DeliveryStandard は通常配送を示す。
	DeliveryStandard DeliveryType = "Standard"
	// DeliveryExpress は速達配送を示す。
	DeliveryExpress DeliveryType = "Express"
)

// Address は配送先住所を表す。ユーザー入力をそのまま保持し、正規化しない。
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// ShippingLine は注文作成APIに渡す配送先文字列を組み立てる。
// 形式は "street, city, country" で固定。
func (a Address) ShippingLine() string {
	return a.Street + ", " + a.City + ", " + a.Country
}

// CheckoutSession は進行中の1回のチェックアウトの状態を表す。
// アクティブなウィザードが排他的に所有し、他のチェックアウトと共有しない。
// OwnerIDは所有者のゲートウェイセッションID。Addressは住所ステップ完了
// までnil。Totalはカート／価格ソース由来の正式値であり、ユーザー入力ではない。
type CheckoutSession struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"ownerId"`
	State        CheckoutState   `json:"state"`
	Address      *Address        `json:"address,omitempty"`
	DeliveryType DeliveryType    `json:"deliveryType"`
	Total        decimal.Decimal `json:"total"`
	OrderID      int64           `json:"orderId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
