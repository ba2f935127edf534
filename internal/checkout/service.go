// Package checkout は2ステップのチェックアウトウィザードを統括する。
// 住所入力→内容確認の2ステップと、確定時の注文作成→決済セッション作成→
// リダイレクトの逐次ワークフローを状態機械として管理する。
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/store"
)

// ErrNoActiveSession は操作対象のチェックアウトが存在しないことを示す。
var ErrNoActiveSession = errors.New("no active checkout session")

// ErrSessionAbandoned はリモート呼び出し中にチェックアウトが破棄された
// ことを示す。以降の状態書き込みは行われない。
var ErrSessionAbandoned = errors.New("checkout session abandoned during workflow")

// ErrInvalidState は現在の状態で許可されない操作を示す。
var ErrInvalidState = errors.New("operation not allowed in current checkout state")

// ValidationError は住所入力のフィールド単位の検証失敗を表す。
type ValidationError struct {
	FieldErrors map[string]string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("address validation failed: %d field(s)", len(e.FieldErrors))
}

// OrderCreator は注文作成の依存インターフェース。
type OrderCreator interface {
	Create(ctx context.Context, shippingAddress string) (*model.Order, error)
}

// PaymentSessionCreator は決済セッション作成の依存インターフェース。
type PaymentSessionCreator interface {
	CreateSession(ctx context.Context, orderID int64) (*model.PaymentSession, error)
}

// TotalSource は注文合計金額の正式ソース。確認ステップ進入時に1回参照する。
type TotalSource interface {
	Total(ctx context.Context, userID string) (decimal.Decimal, error)
}

// RedirectGuard は外部リダイレクト先URLの検証インターフェース。
type RedirectGuard interface {
	ValidateExternalURL(rawURL string) error
}

// OutcomeRecorder はチェックアウトの帰結メトリクス収集インターフェース。
type OutcomeRecorder interface {
	RecordCheckoutOutcome(outcome string)
}

// Service はチェックアウトウィザードの状態機械を実装する。
// オーナー（ゲートウェイセッション）ごとに同時に1つのウィザードのみが存在する。
type Service struct {
	sessions store.CheckoutStore
	orders   OrderCreator
	payments PaymentSessionCreator
	totals   TotalSource
	guard    RedirectGuard
	metrics  OutcomeRecorder // nilの場合はメトリクスを記録しない
	ttl      time.Duration
	logger   *slog.Logger
}

// ServiceConfig はServiceの設定。
type ServiceConfig struct {
	Sessions store.CheckoutStore
	Orders   OrderCreator
	Payments PaymentSessionCreator
	Totals   TotalSource
	Guard    RedirectGuard
	Metrics  OutcomeRecorder
	TTL      time.Duration
	Logger   *slog.Logger
}

// NewService はServiceを生成する。
func NewService(config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		sessions: config.Sessions,
		orders:   config.Orders,
		payments: config.Payments,
		totals:   config.Totals,
		guard:    config.Guard,
		metrics:  config.Metrics,
		ttl:      ttl,
		logger:   logger,
	}
}

// Start は新しいチェックアウトウィザードを開始する。
// 進行中のウィザードが既に存在する場合はそれを返し、新規作成しない。
// 終端状態のウィザードは破棄して新しいものに置き換える。
func (s *Service) Start(ctx context.Context, ownerID string) (*model.CheckoutSession, error) {
	existing, err := s.sessions.Find(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find checkout session: %w", err)
	}
	if existing != nil && !existing.State.IsTerminal() {
		return existing, nil
	}

	now := time.Now()
	session := &model.CheckoutSession{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		State:        model.CheckoutStateAddress,
		DeliveryType: model.DeliveryStandard,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	s.logger.Info("checkout started",
		slog.String("checkout_id", session.ID),
	)
	return session, nil
}

// Get は進行中のチェックアウトを取得する。
// 存在しない場合はErrNoActiveSessionを返す。
func (s *Service) Get(ctx context.Context, ownerID string) (*model.CheckoutSession, error) {
	session, err := s.sessions.Find(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find checkout session: %w", err)
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	return session, nil
}

// SubmitAddress は住所ステップを確定して確認ステップへ進む。
// 全フィールドが空の場合は何もせず現在のセッションを返す。一部フィールドが
// 空の場合はフィールド単位のValidationErrorを返す。入力はそのまま保存し、
// 正規化しない。確認ステップ進入時に合計金額を正式ソースから1回取得する。
func (s *Service) SubmitAddress(ctx context.Context, ownerID, userID string, address model.Address) (*model.CheckoutSession, error) {
	session, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if session.State != model.CheckoutStateAddress && session.State != model.CheckoutStateSummary {
		return nil, fmt.Errorf("%w: submit address in state %s", ErrInvalidState, session.State)
	}

	// 1. 空フォームの送信は遷移しない
	if address.Street == "" && address.City == "" && address.Country == "" {
		return session, nil
	}

	// 2. フィールド単位の検証
	fieldErrors := map[string]string{}
	if strings.TrimSpace(address.Street) == "" {
		fieldErrors["street"] = "Street is required"
	}
	if strings.TrimSpace(address.City) == "" {
		fieldErrors["city"] = "City is required"
	}
	if strings.TrimSpace(address.Country) == "" {
		fieldErrors["country"] = "Country is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}

	// 3. 入力をそのまま保存する。合計取得に失敗しても住所は失わない。
	session.Address = &address
	session.UpdatedAt = time.Now()

	total, err := s.totals.Total(ctx, userID)
	if err != nil {
		if saveErr := s.sessions.Save(ctx, session, s.ttl); saveErr != nil {
			s.logger.Warn("failed to save checkout session after total fetch failure",
				slog.String("checkout_id", session.ID),
				slog.String("error", saveErr.Error()),
			)
		}
		return nil, fmt.Errorf("failed to fetch order total: %w", err)
	}

	// 4. 確認ステップへ遷移
	session.Total = total
	session.State = model.CheckoutStateSummary
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	s.logger.Info("checkout address submitted",
		slog.String("checkout_id", session.ID),
	)
	return session, nil
}

// SetDeliveryType は配送種別を変更する。確認ステップ以前でのみ許可される。
func (s *Service) SetDeliveryType(ctx context.Context, ownerID string, deliveryType model.DeliveryType) (*model.CheckoutSession, error) {
	if deliveryType != model.DeliveryStandard && deliveryType != model.DeliveryExpress {
		return nil, &ValidationError{FieldErrors: map[string]string{
			"deliveryType": "Delivery type must be Standard or Express",
		}}
	}

	session, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if session.State != model.CheckoutStateAddress && session.State != model.CheckoutStateSummary {
		return nil, fmt.Errorf("%w: set delivery type in state %s", ErrInvalidState, session.State)
	}

	session.DeliveryType = deliveryType
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}
	return session, nil
}

// PlaceOrder は注文を確定する。注文作成→決済セッション作成を逐次実行し、
// 成功時は外部決済ページのURLを返してウィザードを完了させる。
//
// 注文作成が成功した時点で注文IDが記録され、以降この呼び出しが失敗から
// 再試行されても注文作成は二度と実行されない。決済セッション作成のみが
// 再試行される。孤児となった注文の取り消しは行わず、バックエンドの
// 管理機能に委ねる。
func (s *Service) PlaceOrder(ctx context.Context, ownerID string) (string, *model.CheckoutSession, error) {
	session, err := s.Get(ctx, ownerID)
	if err != nil {
		return "", nil, err
	}

	// 住所未確定の確定要求は何もしない
	if session.Address == nil {
		return "", session, nil
	}

	switch session.State {
	case model.CheckoutStateSummary:
		// 通常の確定
	case model.CheckoutStateFailed:
		// 失敗からの再試行
	default:
		return "", nil, fmt.Errorf("%w: place order in state %s", ErrInvalidState, session.State)
	}

	// 1. 注文作成。既に注文IDがある場合（決済ステップ失敗からの再試行）は飛ばす。
	if session.OrderID == 0 {
		if session, err = s.transition(ctx, session, model.CheckoutStatePlacing); err != nil {
			return "", nil, err
		}

		createdOrder, orderErr := s.orders.Create(ctx, session.Address.ShippingLine())

		if session, err = s.reload(ctx, session); err != nil {
			return "", nil, err
		}
		if orderErr != nil {
			return "", s.fail(ctx, session, "create_order"), &model.WorkflowError{Step: "create_order", Cause: orderErr}
		}

		session.OrderID = createdOrder.ID
		if session, err = s.transition(ctx, session, model.CheckoutStateRedirecting); err != nil {
			return "", nil, err
		}
	} else {
		if session, err = s.transition(ctx, session, model.CheckoutStateRedirecting); err != nil {
			return "", nil, err
		}
	}

	// 2. 決済セッション作成
	paymentSession, paymentErr := s.payments.CreateSession(ctx, session.OrderID)

	if session, err = s.reload(ctx, session); err != nil {
		return "", nil, err
	}
	if paymentErr != nil {
		return "", s.fail(ctx, session, "create_payment_session"), &model.WorkflowError{Step: "create_payment_session", Cause: paymentErr}
	}

	// 3. リダイレクト先の検証
	if err := s.guard.ValidateExternalURL(paymentSession.URL); err != nil {
		return "", s.fail(ctx, session, "create_payment_session"), &model.WorkflowError{
			Step:  "create_payment_session",
			Cause: fmt.Errorf("unsafe payment redirect url: %w", err),
		}
	}

	// 4. 完了。終端状態を保存してからストアを掃除する。
	session.State = model.CheckoutStateCompleted
	session.UpdatedAt = time.Now()
	if err := s.sessions.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("failed to delete completed checkout session",
			slog.String("checkout_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutOutcome("completed")
	}
	s.logger.Info("checkout completed",
		slog.String("checkout_id", session.ID),
		slog.Int64("order_id", session.OrderID),
	)
	return paymentSession.URL, session, nil
}

// Abandon は進行中のチェックアウトを破棄する。存在しない場合でも成功する。
func (s *Service) Abandon(ctx context.Context, ownerID string) error {
	session, err := s.sessions.Find(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to find checkout session: %w", err)
	}
	if session == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordCheckoutOutcome("abandoned")
	}
	s.logger.Info("checkout abandoned",
		slog.String("checkout_id", session.ID),
		slog.String("state", session.State.String()),
	)
	return nil
}

// transition は状態を変更して保存する。
func (s *Service) transition(ctx context.Context, session *model.CheckoutSession, state model.CheckoutState) (*model.CheckoutSession, error) {
	session.State = state
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}
	return session, nil
}

// reload はリモート呼び出し後にセッションを読み直す。
// 呼び出し中にウィザードが破棄または置き換えられていた場合は
// ErrSessionAbandonedを返し、以降の書き込みを中止させる。
func (s *Service) reload(ctx context.Context, session *model.CheckoutSession) (*model.CheckoutSession, error) {
	current, err := s.sessions.Find(ctx, session.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload checkout session: %w", err)
	}
	if current == nil || current.ID != session.ID {
		return nil, ErrSessionAbandoned
	}
	// リモート呼び出し前のローカル変更（注文ID等）を優先する
	session.DeliveryType = current.DeliveryType
	return session, nil
}

// fail はウィザードを失敗状態に遷移させる。保存に失敗しても失敗状態の
// セッションを返し、呼び出し元が帰結を伝えられるようにする。
func (s *Service) fail(ctx context.Context, session *model.CheckoutSession, step string) *model.CheckoutSession {
	session.State = model.CheckoutStateFailed
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		s.logger.Warn("failed to save failed checkout session",
			slog.String("checkout_id", session.ID),
			slog.String("error", err.Error()),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordCheckoutOutcome("failed_" + step)
	}
	s.logger.Warn("checkout failed",
		slog.String("checkout_id", session.ID),
		slog.String("step", step),
		slog.Int64("order_id", session.OrderID),
	)
	return session
}
