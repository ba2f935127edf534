package model

import "time"

// Severity は通知の重要度を表す。
type Severity string

const (
	// SeverityError は操作が失敗したことを示す。
	SeverityError Severity = "error"
	// SeverityWarning は注意が必要な状態を示す。
	SeverityWarning Severity = "warning"
	// SeverityInfo は補足的な情報を示す。
	SeverityInfo Severity = "info"
	// SeveritySuccess は操作が成功したことを示す。
	SeveritySuccess Severity = "success"
)

// Notification はユーザー向けの一時通知を表す。
// プレゼンテーション層がDurationの間だけ表示して破棄する。
type Notification struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"durationMs"`
	Severity   Severity      `json:"severity"`
	CreatedAt  time.Time     `json:"createdAt"`
}
