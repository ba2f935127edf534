package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionConfig     middleware.SessionConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証状態・通知・遷移要求
	Auth      middleware.AuthSnapshotter
	Notifier  notify.Notifier
	Drainer   NotificationDrainer
	Navigator *PendingNavigator

	// メトリクス
	GuardMetrics   middleware.GuardMetrics
	MetricsHandler http.Handler

	// ドメインサービス
	AccountService  AccountServiceInterface
	ReturnPath      ReturnPathValidator
	CatalogService  CatalogServiceInterface
	CartService     CartServiceInterface
	WishlistService WishlistServiceInterface
	CheckoutService CheckoutServiceInterface
	OrderGetter     OrderGetter
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → GatewaySessionMiddleware → LoggingMiddleware → RecoveryMiddleware
//
// 公開ルート（/auth/*、商品カタログ、通知、ヘルスチェック）はアクセスガードの
// 外に配置する。カート・ウィッシュリスト・チェックアウトはガード配下に置き、
// 未認証セッションはログインルートへリダイレクトされる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewGatewaySessionMiddleware(deps.SessionConfig))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AccountService, deps.Auth, deps.ReturnPath, deps.Notifier)
	catalogHandler := NewCatalogHandler(deps.CatalogService, deps.Navigator)
	cartHandler := NewCartHandler(deps.CartService, deps.Auth, deps.Navigator)
	wishlistHandler := NewWishlistHandler(deps.WishlistService, deps.Navigator)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutService, deps.OrderGetter, deps.Auth, deps.Notifier, deps.Navigator)
	notificationHandler := NewNotificationHandler(deps.Drainer)

	// --- 公開ルート ---

	r.Get("/healthz", handleHealthz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Get("/not-found", handleNotFoundView)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{id}", catalogHandler.GetProduct)
		})
		r.Get("/api/categories", catalogHandler.ListCategories)
		r.Get("/api/brands", catalogHandler.ListBrands)

		// ガード拒否時の通知もここからドレインされるため、ガードの外に置く
		r.Get("/api/notifications", notificationHandler.Drain)
	})

	// --- アクセスガード配下のルート ---
	// ミドルウェアスタック: AccessGuard → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAccessGuardMiddleware(deps.Auth, deps.Notifier, deps.GuardMetrics))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// カート
		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})

		// ウィッシュリスト
		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.List)
			r.Post("/toggle/{productId}", wishlistHandler.Toggle)
		})

		// チェックアウトウィザード（確定操作には専用レート制限を追加）
		r.Route("/api/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Start)
			r.Get("/", checkoutHandler.Get)
			r.Delete("/", checkoutHandler.Abandon)
			r.Post("/address", checkoutHandler.SubmitAddress)
			r.Post("/delivery", checkoutHandler.SetDeliveryType)
			r.With(deps.RateLimiter.CheckoutMiddleware()).Post("/place", checkoutHandler.PlaceOrder)
		})

		// 決済完了後の戻りビュー
		r.Get("/api/payments/success/{orderID}", checkoutHandler.PaymentSuccess)
	})

	return r
}

// handleHealthz はヘルスチェックに応答する。
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFoundView はnot-foundビューに応答する。
// 分類器の遷移要求先であり、クライアントはここを表示して打ち切る。
func handleNotFoundView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Message: "Resource not found",
		Kind:    string(model.ErrorKindNotFound),
	})
}
