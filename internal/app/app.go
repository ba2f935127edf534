// Package app はアプリケーションの起動と依存関係のワイヤリングを担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/shopgate/internal/account"
	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/authstate"
	"github.com/hitoshi/shopgate/internal/cart"
	"github.com/hitoshi/shopgate/internal/catalog"
	"github.com/hitoshi/shopgate/internal/checkout"
	"github.com/hitoshi/shopgate/internal/config"
	"github.com/hitoshi/shopgate/internal/handler"
	"github.com/hitoshi/shopgate/internal/logger"
	"github.com/hitoshi/shopgate/internal/metrics"
	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/notify"
	"github.com/hitoshi/shopgate/internal/order"
	"github.com/hitoshi/shopgate/internal/payment"
	"github.com/hitoshi/shopgate/internal/security"
	"github.com/hitoshi/shopgate/internal/store"
	"github.com/hitoshi/shopgate/internal/wishlist"
	"github.com/hitoshi/shopgate/internal/worker/cleanup"
)

// cleanupInterval は期限切れチェックアウトセッションの掃除間隔。
const cleanupInterval = 10 * time.Minute

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はゲートウェイサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. ストアの初期化（REDIS_URL未設定時はインメモリ）
	var (
		tokenStore    store.TokenStore
		checkoutStore store.CheckoutStore
	)
	if cfg.RedisURL != "" {
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		tokenStore = store.NewRedisTokenStore(client)
		checkoutStore = store.NewRedisCheckoutStore(client)
		slog.Info("redis store initialized")
	} else {
		tokenStore = store.NewMemoryTokenStore()
		checkoutStore = store.NewMemoryCheckoutStore()
		slog.Info("in-memory store initialized")
	}

	// 2. メトリクスの初期化
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// 3. 認証状態・通知・遷移要求の初期化
	authService := authstate.NewService(tokenStore, time.Duration(cfg.SessionMaxAge)*time.Second)
	notifier := notify.NewService()
	navigator := handler.NewPendingNavigator()

	// 4. バックエンドAPIクライアントの初期化
	var transport http.RoundTripper
	if cfg.BackendSSRFGuard {
		transport = security.NewSafeTransport(cfg.BackendTimeout)
	}
	api := apiclient.NewClient(apiclient.ClientConfig{
		BaseURL:   cfg.BackendAPIURL,
		Timeout:   cfg.BackendTimeout,
		Transport: transport,
		Token: func(ctx context.Context) (string, error) {
			sessionID, err := middleware.SessionIDFromContext(ctx)
			if err != nil {
				// セッション外からの呼び出しは未認証として通す
				return "", nil
			}
			return tokenStore.Get(ctx, sessionID)
		},
		Reactor: apiclient.NewReactor(notifier, navigator),
		Metrics: collector,
		Logger:  slog.Default(),
	})

	// 5. セキュリティサービスの初期化
	redirectGuard := security.NewRedirectGuard(cfg.PaymentAllowedHosts)

	// 6. ドメインサービスの初期化
	accountService := account.NewService(api, authService)
	catalogService := catalog.NewService(api)
	cartService := cart.NewService(api)
	wishlistService := wishlist.NewService(api)
	orderService := order.NewService(api)
	paymentService := payment.NewService(api)

	checkoutService := checkout.NewService(checkout.ServiceConfig{
		Sessions: checkoutStore,
		Orders:   orderService,
		Payments: paymentService,
		Totals:   cartService,
		Guard:    redirectGuard,
		Metrics:  collector,
		TTL:      cfg.CheckoutTTL,
		Logger:   slog.Default(),
	})

	// 7. レート制限の初期化（req/min -> req/sec に変換）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.CheckoutRate = rate.Limit(float64(cfg.RateLimitCheckout) / 60.0)
	rateLimiterCfg.CheckoutBurst = cfg.RateLimitCheckout
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		SessionConfig: middleware.SessionConfig{
			Secret:       cfg.SessionSecret,
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
			MaxAge:       cfg.SessionMaxAge,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Auth:      authService,
		Notifier:  notifier,
		Drainer:   notifier,
		Navigator: navigator,

		GuardMetrics:   collector,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),

		AccountService:  accountService,
		ReturnPath:      redirectGuard,
		CatalogService:  catalogService,
		CartService:     cartService,
		WishlistService: wishlistService,
		CheckoutService: checkoutService,
		OrderGetter:     orderService,
	}

	router := handler.NewRouter(deps)

	// 9. 期限切れチェックアウトの掃除をバックグラウンドで開始
	cleanupJob := cleanup.NewCleanupJob(checkoutStore, slog.Default())
	go cleanupJob.Start(ctx, cleanupInterval)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("gateway server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down gateway server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("gateway server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
