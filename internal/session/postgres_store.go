package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/model"
)

// PostgresStore はPostgreSQLを使用したセッションストア。
// 複数プロセス構成でもセッションを共有でき、再起動でも失われない。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore はPostgresStoreを生成する。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create はセッションを作成する。
func (s *PostgresStore) Create(ctx context.Context, session *Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_id, user_name, user_email, user_role, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, string(session.Token),
		session.User.ID, session.User.Name, session.User.Email, string(session.User.Role),
		session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合は (nil, nil) を返す。
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Session, error) {
	session := &Session{}
	var token, role string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, user_name, user_email, user_role, created_at, expires_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(
		&session.ID, &token,
		&session.User.ID, &session.User.Name, &session.User.Email, &role,
		&session.CreatedAt, &session.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session.Token = api.Token(token)
	session.User.Role = model.Role(role)
	return session, nil
}

// Update はトークン・スナップショットの更新を保存する。
func (s *PostgresStore) Update(ctx context.Context, session *Session) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET token = $2, user_id = $3, user_name = $4, user_email = $5, user_role = $6, expires_at = $7
		 WHERE id = $1`,
		session.ID, string(session.Token),
		session.User.ID, session.User.Name, session.User.Email, string(session.User.Role),
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
// クリーンアップジョブから定期的に呼び出される。
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ Store = (*PostgresStore)(nil)
