package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stitchline/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Endpoint:          "minio:9000",
		Bucket:            "stitchline",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.SecretKey = ""
		_, err := NewS3ObjectStorage(cfg)
		assert.ErrorContains(t, err, "secret key are required")
	})

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "stitchline", s.Bucket())
		assert.Equal(t, 10*time.Minute, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com/", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)

	got, err = normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	t.Run("defaults to endpoint and bucket", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validConfig())
		require.NoError(t, err)
		assert.Equal(t, "http://minio:9000/stitchline/products/a.jpg", s.PublicURL("/products/a.jpg"))
	})

	t.Run("uses configured CDN base", func(t *testing.T) {
		cfg := validConfig()
		cfg.PublicBaseURL = "https://cdn.stitchline.lk/"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.stitchline.lk/products/a.jpg", s.PublicURL("products/a.jpg"))
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig())
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.GenerateUploadURL(context.Background(), "", "image/jpeg", time.Minute)
		assert.Error(t, err)
	})

	t.Run("presigns locally", func(t *testing.T) {
		url, expiresAt, err := s.GenerateUploadURL(context.Background(), "products/x.jpg", "image/jpeg", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://minio:9000/stitchline/products/x.jpg?"), url)
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})
}

func TestS3ObjectStorage_Upload_RequiresKey(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig())
	require.NoError(t, err)
	assert.Error(t, s.Upload(context.Background(), "", []byte("x"), "text/plain"))
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage("http://localhost:5000/uploads/")
	ctx := context.Background()

	url, _, err := s.GenerateUploadURL(ctx, "products/a.jpg", "image/jpeg", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/upload/products/a.jpg?expires="))
	assert.Equal(t, "http://localhost:5000/uploads/products/a.jpg", s.PublicURL("products/a.jpg"))

	require.NoError(t, s.Upload(ctx, "invoices/1.pdf", []byte("%PDF"), "application/pdf"))
	data, ct, ok := s.Object("invoices/1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "application/pdf", ct)

	_, _, err = s.GenerateUploadURL(ctx, "", "", time.Minute)
	assert.Error(t, err)
}
