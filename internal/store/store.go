package store

import (
	"context"

	"github.com/me/codelab/pkg/model"
)

// Store defines the persistence layer for backend launch sessions and
// recorded grades.
type Store interface {
	// Launch sessions (ltik credential -> identity record)
	CreateLaunchSession(ctx context.Context, sess *model.LaunchSession) error
	GetLaunchSessionByCredential(ctx context.Context, credential string) (*model.LaunchSession, error)
	DeleteLaunchSession(ctx context.Context, id string) error
	DeleteExpiredLaunchSessions(ctx context.Context) (int64, error)

	// Grades
	RecordGrade(ctx context.Context, g *model.GradeRecord) error
	ListGradesByUser(ctx context.Context, userID, contextID string) ([]*model.GradeRecord, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
