// Package model はドメインモデルを定義する。
package model

// Role はユーザーの役割を表す閉じた列挙型。
// ルートと操作の可否を制御する。
type Role string

const (
	// RoleCustomer はイベントを予約する一般ユーザー。
	RoleCustomer Role = "customer"
	// RoleVendor はイベントを主催するユーザー。
	RoleVendor Role = "vendor"
	// RoleAdmin は予約済みの管理者ロール。現時点で対応するルートは存在しない。
	RoleAdmin Role = "admin"
)

// IsValid はロールが既知の値かどうかを判定する。
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User は認証済みユーザーのアイデンティティを表す。
// リモートAPIのGET /auth/meが返すスナップショットであり、
// セッションプロバイダーだけが所有する。ビューは参照のみ。
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsVendor はベンダーロールかどうかを返す。テンプレートの分岐で使用する。
func (u *User) IsVendor() bool {
	return u.Role == RoleVendor
}

// IsCustomer は顧客ロールかどうかを返す。テンプレートの分岐で使用する。
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}
