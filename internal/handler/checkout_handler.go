package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

// CheckoutServiceInterface はチェックアウトハンドラーが必要とするサービスインターフェース。
type CheckoutServiceInterface interface {
	Start(ctx context.Context, ownerID string) (*model.CheckoutSession, error)
	Get(ctx context.Context, ownerID string) (*model.CheckoutSession, error)
	SubmitAddress(ctx context.Context, ownerID, userID string, address model.Address) (*model.CheckoutSession, error)
	SetDeliveryType(ctx context.Context, ownerID string, deliveryType model.DeliveryType) (*model.CheckoutSession, error)
	PlaceOrder(ctx context.Context, ownerID string) (string, *model.CheckoutSession, error)
	Abandon(ctx context.Context, ownerID string) error
}

// OrderGetter は決済完了ビューが必要とする注文参照インターフェース。
type OrderGetter interface {
	Get(ctx context.Context, orderID int64) (*model.Order, error)
}

// CheckoutHandler はチェックアウトウィザードのHTTPハンドラー。
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	orders    OrderGetter
	auth      middleware.AuthSnapshotter
	notifier  notify.Notifier
	navigator *PendingNavigator
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(service CheckoutServiceInterface, orders OrderGetter, auth middleware.AuthSnapshotter, notifier notify.Notifier, navigator *PendingNavigator) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		orders:    orders,
		auth:      auth,
		notifier:  notifier,
		navigator: navigator,
	}
}

// addressRequest は住所ステップ確定リクエストのボディ。
type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// deliveryRequest は配送種別変更リクエストのボディ。
type deliveryRequest struct {
	DeliveryType string `json:"deliveryType"`
}

// checkoutResponse はチェックアウトセッションのAPIレスポンス。
type checkoutResponse struct {
	ID           string          `json:"id"`
	State        string          `json:"state"`
	Address      *model.Address  `json:"address,omitempty"`
	DeliveryType string          `json:"deliveryType"`
	Total        decimal.Decimal `json:"total"`
	OrderID      int64           `json:"orderId,omitempty"`
}

// placeOrderResponse は注文確定のレスポンス。
// RedirectURLは検証済みの外部決済ページURLで、クライアントが遷移先として使用する。
type placeOrderResponse struct {
	RedirectURL string           `json:"redirectUrl,omitempty"`
	Checkout    checkoutResponse `json:"checkout"`
}

// Start は新しいチェックアウトウィザードを開始する。
// POST /api/checkout
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}

	session, err := h.service.Start(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCheckoutResponse(session))
}

// Get は進行中のチェックアウトを返す。
// GET /api/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}

	session, err := h.service.Get(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponse(session))
}

// SubmitAddress は住所ステップを確定する。
// POST /api/checkout/address
func (h *CheckoutHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}
	userID, ok := resolveUserID(w, r, h.auth)
	if !ok {
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	session, err := h.service.SubmitAddress(r.Context(), ownerID, userID, model.Address{
		Street:  req.Street,
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponse(session))
}

// SetDeliveryType は配送種別を変更する。
// POST /api/checkout/delivery
func (h *CheckoutHandler) SetDeliveryType(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}

	var req deliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	session, err := h.service.SetDeliveryType(r.Context(), ownerID, model.DeliveryType(req.DeliveryType))
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponse(session))
}

// PlaceOrder は注文を確定し、外部決済ページへのリダイレクト先を返す。
// POST /api/checkout/place
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}

	redirectURL, session, err := h.service.PlaceOrder(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	writeJSON(w, http.StatusOK, placeOrderResponse{
		RedirectURL: redirectURL,
		Checkout:    toCheckoutResponse(session),
	})
}

// Abandon は進行中のチェックアウトを破棄する。
// DELETE /api/checkout
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionIDOrError(w, r)
	if !ok {
		return
	}

	if err := h.service.Abandon(r.Context(), ownerID); err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PaymentSuccess は決済完了後の戻りビュー。注文を照会して成功通知を発行する。
// GET /api/payments/success/{orderID}
func (h *CheckoutHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeInvalidRequest(w)
		return
	}

	placedOrder, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, r, h.navigator, err)
		return
	}

	if sessionID, err := middleware.SessionIDFromContext(r.Context()); err == nil {
		h.notifier.Push(sessionID, model.Notification{
			Text:     "Your order has been placed successfully",
			Duration: 3000 * time.Millisecond,
			Severity: model.SeveritySuccess,
		})
	}

	writeJSON(w, http.StatusOK, placedOrder)
}

// sessionIDOrError はコンテキストからゲートウェイセッションIDを取り出す。
func sessionIDOrError(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server error - Please try again later"})
		return "", false
	}
	return sessionID, true
}

// toCheckoutResponse はmodel.CheckoutSessionからAPIレスポンスに変換する。
func toCheckoutResponse(session *model.CheckoutSession) checkoutResponse {
	return checkoutResponse{
		ID:           session.ID,
		State:        session.State.String(),
		Address:      session.Address,
		DeliveryType: string(session.DeliveryType),
		Total:        session.Total,
		OrderID:      session.OrderID,
	}
}
