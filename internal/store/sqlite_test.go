package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/me/codelab/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

func testSession(credential string, ttl time.Duration) *model.LaunchSession {
	now := time.Now()
	return &model.LaunchSession{
		ID:           "sess_" + credential,
		Credential:   credential,
		UserID:       "u1",
		Roles:        []string{"Learner", "Mentor"},
		ContextID:    "c1",
		ContextLabel: "Course 1",
		Issuer:       "https://moodle.example.edu",
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func TestLaunchSessionRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	in := testSession("tok1", time.Hour)
	if err := st.CreateLaunchSession(ctx, in); err != nil {
		t.Fatalf("CreateLaunchSession: %v", err)
	}

	out, err := st.GetLaunchSessionByCredential(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetLaunchSessionByCredential: %v", err)
	}
	if out == nil {
		t.Fatal("session not found")
	}
	if out.ID != in.ID || out.UserID != "u1" || out.ContextLabel != "Course 1" {
		t.Errorf("got %+v", out)
	}
	if len(out.Roles) != 2 || out.Roles[0] != "Learner" {
		t.Errorf("Roles = %v", out.Roles)
	}
	if !out.ExpiresAt.Equal(in.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", out.ExpiresAt, in.ExpiresAt)
	}
}

func TestGetLaunchSessionUnknownCredential(t *testing.T) {
	st := testStore(t)

	out, err := st.GetLaunchSessionByCredential(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetLaunchSessionByCredential: %v", err)
	}
	if out != nil {
		t.Errorf("got %+v, want nil for unknown credential", out)
	}
}

func TestCreateLaunchSessionDuplicateCredential(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateLaunchSession(ctx, testSession("tok1", time.Hour)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	dup := testSession("tok1", time.Hour)
	dup.ID = "sess_other"
	if err := st.CreateLaunchSession(ctx, dup); err == nil {
		t.Error("duplicate credential should violate the unique constraint")
	}
}

func TestDeleteLaunchSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	sess := testSession("tok1", time.Hour)
	if err := st.CreateLaunchSession(ctx, sess); err != nil {
		t.Fatalf("CreateLaunchSession: %v", err)
	}
	if err := st.DeleteLaunchSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteLaunchSession: %v", err)
	}
	out, err := st.GetLaunchSessionByCredential(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetLaunchSessionByCredential: %v", err)
	}
	if out != nil {
		t.Error("session still present after delete")
	}
}

func TestDeleteExpiredLaunchSessions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateLaunchSession(ctx, testSession("live", time.Hour)); err != nil {
		t.Fatalf("create live: %v", err)
	}
	if err := st.CreateLaunchSession(ctx, testSession("dead", -time.Hour)); err != nil {
		t.Fatalf("create dead: %v", err)
	}

	n, err := st.DeleteExpiredLaunchSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredLaunchSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}

	if out, _ := st.GetLaunchSessionByCredential(ctx, "live"); out == nil {
		t.Error("live session was deleted")
	}
	if out, _ := st.GetLaunchSessionByCredential(ctx, "dead"); out != nil {
		t.Error("expired session survived")
	}
}

func TestGradeRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	g := &model.GradeRecord{
		ID:              "grade_1",
		SessionID:       "sess_1",
		UserID:          "u1",
		ContextID:       "c1",
		Score:           92,
		NormalizedScore: 0.92,
		Comment:         "Evaluated by Codelab",
		CreatedAt:       time.Now(),
	}
	if err := st.RecordGrade(ctx, g); err != nil {
		t.Fatalf("RecordGrade: %v", err)
	}

	grades, err := st.ListGradesByUser(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("ListGradesByUser: %v", err)
	}
	if len(grades) != 1 {
		t.Fatalf("got %d grades, want 1", len(grades))
	}
	got := grades[0]
	if got.Score != 92 || got.NormalizedScore != 0.92 || got.Comment != "Evaluated by Codelab" {
		t.Errorf("got %+v", got)
	}
}

func TestListGradesFiltersAndOrders(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	records := []*model.GradeRecord{
		{ID: "g1", SessionID: "s", UserID: "u1", ContextID: "c1", Score: 50, NormalizedScore: 0.5, CreatedAt: base},
		{ID: "g2", SessionID: "s", UserID: "u1", ContextID: "c1", Score: 90, NormalizedScore: 0.9, CreatedAt: base.Add(time.Second)},
		{ID: "g3", SessionID: "s", UserID: "u1", ContextID: "c2", Score: 70, NormalizedScore: 0.7, CreatedAt: base},
		{ID: "g4", SessionID: "s", UserID: "u2", ContextID: "c1", Score: 80, NormalizedScore: 0.8, CreatedAt: base},
	}
	for _, g := range records {
		if err := st.RecordGrade(ctx, g); err != nil {
			t.Fatalf("RecordGrade(%s): %v", g.ID, err)
		}
	}

	inContext, err := st.ListGradesByUser(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("ListGradesByUser: %v", err)
	}
	if len(inContext) != 2 {
		t.Fatalf("got %d grades, want 2", len(inContext))
	}
	// Latest first, so the resubmitted score wins when forwarding.
	if inContext[0].ID != "g2" {
		t.Errorf("first grade = %s, want g2 (newest)", inContext[0].ID)
	}

	all, err := st.ListGradesByUser(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListGradesByUser: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d grades across contexts, want 3", len(all))
	}
}
