package model

import "github.com/shopspring/decimal"

// Product はカタログ上の商品を表す。
// バックエンドAPIのレスポンスをそのまま写像し、Descriptionのみ
// サニタイズ済みのHTMLに差し替えて保持する。
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  int64           `json:"categoryId"`
	BrandID     int64           `json:"brandId"`
	Rating      float64         `json:"rating"`
}

// Category は商品カテゴリを表す。
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Brand は商品ブランドを表す。
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductFilter は商品一覧の絞り込み条件。
// ゼロ値のフィールドは条件に含めない。
type ProductFilter struct {
	Search     string
	CategoryID int64
	BrandID    int64
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	MinRating  float64
}
