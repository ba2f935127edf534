package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopgate/internal/model"
)

// WishlistServiceInterface はウィッシュリストハンドラーが必要とするサービスインターフェース。
type WishlistServiceInterface interface {
	Toggle(ctx context.Context, productID int64) ([]model.WishlistItem, error)
	List(ctx context.Context) ([]model.WishlistItem, error)
}

// WishlistHandler はウィッシュリストのHTTPハンドラー。
type WishlistHandler struct {
	service   WishlistServiceInterface
	navigator *PendingNavigator
}

// NewWishlistHandler はWishlistHandlerを生成する。
func NewWishlistHandler(service WishlistServiceInterface, navigator *PendingNavigator) *WishlistHandler {
	return &WishlistHandler{
		service:   service,
		navigator: navigator,
	}
}

// List は現在のウィッシュリストを返す。
// GET /api/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Toggle は商品のウィッシュリスト登録状態を反転する。
// POST /api/wishlist/toggle/{productId}
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeInvalidRequest(w)
		return
	}

	items, err := h.service.Toggle(r.Context(), productID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
