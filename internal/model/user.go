package model

// User はバックエンドに登録されたユーザーを表す。
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthResult はバックエンドのログインAPIが返す認証結果を表す。
// Tokenは以降のリクエストに付与するBearerトークン（ゲートウェイからは
// 不透明な資格情報として扱う）。
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
