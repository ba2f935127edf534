// Package cleanup は期限切れチェックアウトセッションの自動削除ジョブを提供する。
// TTLをストア側が自動処理しないインメモリストア向けの定期バッチであり、
// Redisストアでは削除対象が常に0件になる。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Purger は期限切れセッションの削除を抽象化するインターフェース。
// store.CheckoutStoreの部分集合として定義する。
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// CleanupJob は期限切れチェックアウトセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions Purger
	logger   *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions Purger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purgedCount, err := j.sessions.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("チェックアウトセッションのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("チェックアウトセッションのクリーンアップに失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("チェックアウトセッションのクリーンアップが完了しました",
		slog.Int("purged_count", purgedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start はクリーンアップジョブを定期実行する。ブロッキングで動作し、
// コンテキストのキャンセルで停止する。起動直後に1回実行する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}
