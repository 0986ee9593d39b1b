package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open はローカルセッションストア用のPostgreSQL接続を開く。
// ここに保存されるのはセッション行だけで、イベントや予約の一次データは
// リモートAPI側が保持する。sql.Openは接続を検証しないため、起動時に
// PingContextで到達性を確認すること。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// セッション参照は1リクエストあたり高々1クエリなので小さめのプールで足りる
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
