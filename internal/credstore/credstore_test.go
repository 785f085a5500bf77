package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func testFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreEmpty(t *testing.T) {
	store := testFileStore(t)

	cred, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred != "" {
		t.Errorf("Get on empty store = %q, want empty", cred)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := testFileStore(t)

	if err := store.Set("ltik_abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cred, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred != "ltik_abc" {
		t.Errorf("Get = %q, want ltik_abc", cred)
	}
}

func TestFileStoreSingleSlotOverwrite(t *testing.T) {
	store := testFileStore(t)

	if err := store.Set("first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set("second"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cred, _ := store.Get()
	if cred != "second" {
		t.Errorf("Get = %q, want second (new credential overwrites)", cred)
	}
}

func TestFileStoreClear(t *testing.T) {
	store := testFileStore(t)

	if err := store.Set("ltik_abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cred, _ := store.Get()
	if cred != "" {
		t.Errorf("Get after Clear = %q, want empty", cred)
	}

	// Clearing an already-empty slot is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.Set("ltik_persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	cred, err := second.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred != "ltik_persisted" {
		t.Errorf("Get after reopen = %q, want ltik_persisted", cred)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Get(); err == nil {
		t.Error("Get on corrupt file should fail")
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	if cred, _ := store.Get(); cred != "" {
		t.Errorf("empty MemStore Get = %q", cred)
	}
	store.Set("tok")
	if cred, _ := store.Get(); cred != "tok" {
		t.Errorf("Get = %q, want tok", cred)
	}
	store.Clear()
	if cred, _ := store.Get(); cred != "" {
		t.Errorf("Get after Clear = %q, want empty", cred)
	}
}
