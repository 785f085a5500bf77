package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/codelab/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL improves concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Launch sessions ---

func (s *SQLiteStore) CreateLaunchSession(ctx context.Context, sess *model.LaunchSession) error {
	s.logger.Debug("sql", "op", "insert", "table", "launch_sessions", "id", sess.ID)

	rolesJSON, err := json.Marshal(sess.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO launch_sessions (id, credential, user_id, roles, context_id, context_label, issuer, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Credential, sess.UserID, string(rolesJSON),
		sess.ContextID, sess.ContextLabel, sess.Issuer,
		sess.CreatedAt.Format(time.RFC3339Nano), sess.ExpiresAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetLaunchSessionByCredential(ctx context.Context, credential string) (*model.LaunchSession, error) {
	s.logger.Debug("sql", "op", "select", "table", "launch_sessions")

	var sess model.LaunchSession
	var rolesJSON, createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, credential, user_id, roles, context_id, context_label, issuer, created_at, expires_at
		 FROM launch_sessions WHERE credential = ?`, credential,
	).Scan(&sess.ID, &sess.Credential, &sess.UserID, &rolesJSON,
		&sess.ContextID, &sess.ContextLabel, &sess.Issuer, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rolesJSON), &sess.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal roles: %w", err)
	}
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	return &sess, nil
}

func (s *SQLiteStore) DeleteLaunchSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "launch_sessions", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM launch_sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteExpiredLaunchSessions(ctx context.Context) (int64, error) {
	s.logger.Debug("sql", "op", "delete-expired", "table", "launch_sessions")
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM launch_sessions WHERE expires_at < ?`,
		time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Grades ---

func (s *SQLiteStore) RecordGrade(ctx context.Context, g *model.GradeRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "grades", "id", g.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grades (id, session_id, user_id, context_id, score, normalized_score, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.SessionID, g.UserID, g.ContextID,
		g.Score, g.NormalizedScore, g.Comment,
		g.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) ListGradesByUser(ctx context.Context, userID, contextID string) ([]*model.GradeRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "grades", "user_id", userID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, context_id, score, normalized_score, comment, created_at
		 FROM grades WHERE user_id = ? AND (? = '' OR context_id = ?)
		 ORDER BY created_at DESC`, userID, contextID, contextID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []*model.GradeRecord
	for rows.Next() {
		var g model.GradeRecord
		var createdAt string
		if err := rows.Scan(&g.ID, &g.SessionID, &g.UserID, &g.ContextID,
			&g.Score, &g.NormalizedScore, &g.Comment, &createdAt); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		grades = append(grades, &g)
	}
	return grades, rows.Err()
}
