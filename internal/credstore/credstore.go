// Package credstore persists the single opaque session credential ("ltik")
// between tool invocations. One slot: a newly discovered credential
// overwrites whatever was stored. No expiry is tracked locally; staleness is
// only ever discovered by backend rejection.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const credentialsFileName = "credentials.json"

// Store holds at most one credential.
type Store interface {
	// Get returns the stored credential, or "" when the slot is empty.
	Get() (string, error)
	// Set overwrites the slot unconditionally.
	Set(credential string) error
	// Clear empties the slot.
	Clear() error
}

// FileStore persists the credential in a JSON file under the user's config
// directory, surviving process restarts.
type FileStore struct {
	path string
}

type credentials struct {
	Credential string `json:"credential"`
}

// NewFileStore creates a file-backed store at path. An empty path resolves
// to ~/.codelab/credentials.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		path = filepath.Join(home, ".codelab", credentialsFileName)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parse credentials: %w", err)
	}
	return creds.Credential, nil
}

func (s *FileStore) Set(credential string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(credentials{Credential: credential}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// MemStore is an in-memory store for tests and ephemeral runs.
type MemStore struct {
	mu         sync.Mutex
	credential string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential, nil
}

func (s *MemStore) Set(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	return nil
}
