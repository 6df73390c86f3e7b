package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/stitchline/backend/internal/application/catalog"
)

// MemoryStorage keeps uploaded objects in process memory and hands out
// fake upload URLs. It backs local development when no object store is configured.
type MemoryStorage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ catalogapp.ImageStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a MemoryStorage serving objects under baseURL
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://localhost:5000/uploads"
	}
	return &MemoryStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

// GenerateUploadURL returns a URL that only encodes the key and expiry
func (s *MemoryStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return s.baseURL + "/upload/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

// PublicURL returns the URL the object is served from
func (s *MemoryStorage) PublicURL(storageKey string) string {
	return s.baseURL + "/" + strings.TrimLeft(storageKey, "/")
}

// Upload stores a copy of data under storageKey
func (s *MemoryStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Object returns the stored bytes and content type of storageKey
func (s *MemoryStorage) Object(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[storageKey]
	return o.data, o.contentType, ok
}
