package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopgate/internal/cart"
	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddItem(ctx context.Context, input cart.AddItemInput) (*model.Cart, error)
	RemoveItem(ctx context.Context, itemID int64) error
}

// CartHandler はカートのHTTPハンドラー。アクセスガード通過後のルートに
// 配置されるため、認証済みセッションのみが到達する。
type CartHandler struct {
	service   CartServiceInterface
	auth      middleware.AuthSnapshotter
	navigator *PendingNavigator
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface, auth middleware.AuthSnapshotter, navigator *PendingNavigator) *CartHandler {
	return &CartHandler{
		service:   service,
		auth:      auth,
		navigator: navigator,
	}
}

// GetCart は現在のユーザーのカートを返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUserID(w, r, h.auth)
	if !ok {
		return
	}

	userCart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, userCart)
}

// AddItem はカートに商品を追加する。
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var input cart.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidRequest(w)
		return
	}

	userCart, err := h.service.AddItem(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, userCart)
}

// RemoveItem はカートから商品を取り除く。
// DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.RemoveItem(r.Context(), itemID); err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveUserID は認証スナップショットからバックエンドのユーザーIDを取り出す。
// トークンにユーザーIDクレームがない場合は401を書き込みfalseを返す。
func resolveUserID(w http.ResponseWriter, r *http.Request, auth middleware.AuthSnapshotter) (string, bool) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Message: "Unauthorized access",
			Kind:    string(model.ErrorKindUnauthorized),
		})
		return "", false
	}

	snapshot, err := auth.Snapshot(r.Context(), sessionID)
	if err != nil || snapshot.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Message: "Unauthorized access",
			Kind:    string(model.ErrorKindUnauthorized),
		})
		return "", false
	}

	return snapshot.UserID, true
}
