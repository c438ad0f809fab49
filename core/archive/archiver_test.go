package archive_test

import (
	"context"
	"testing"
	"time"

	"courtsync/core/archive"
	"courtsync/core/archive/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	processedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := map[string]any{"success": true}

	t.Run("Uploads Under Prefix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "courtsync").Return(true, nil)
		client.On("PutObject", mock.Anything, "courtsync", "reports/2026-03-01T12:00:00Z.json",
			mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

		a := archive.NewArchiver(client, "courtsync", "reports")
		key, err := a.Store(context.Background(), processedAt, report)

		require.NoError(t, err)
		assert.Equal(t, "reports/2026-03-01T12:00:00Z.json", key)
		client.AssertExpectations(t)
	})

	t.Run("Missing Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "courtsync").Return(false, nil)

		a := archive.NewArchiver(client, "courtsync", "reports")
		_, err := a.Store(context.Background(), processedAt, report)

		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("Upload Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "courtsync").Return(true, nil)
		client.On("PutObject", mock.Anything, "courtsync", mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, assert.AnError)

		a := archive.NewArchiver(client, "courtsync", "reports")
		_, err := a.Store(context.Background(), processedAt, report)

		assert.Error(t, err)
	})
}

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := archive.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "courtsync",
		}

		client, err := archive.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		cfg := archive.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := archive.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}
