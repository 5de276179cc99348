package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"cmdb-sync/core/reconcile"
	"cmdb-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reportFixture() *reconcile.RunReport {
	return &reconcile.RunReport{
		RunID:     "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Instance:  "dev85142.service-now.com",
		StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Created:   2,
	}
}

func TestObjectName(t *testing.T) {
	name := ObjectName(reportFixture())
	assert.Equal(t, "reports/2024/03/01/run-7c9e6679-7425-40de-944b-e07fc1f90ae7.json", name)
}

func TestStore_Upload(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "sync-reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	store := NewStore(client, "sync-reports", zap.NewNop())

	name, err := store.Upload(context.Background(), reportFixture())
	require.NoError(t, err)
	assert.Equal(t, ObjectName(reportFixture()), name)
	client.AssertExpectations(t)

	// The uploaded payload must round-trip back into a report.
	call := client.Calls[0]
	reader := call.Arguments.Get(3).(io.Reader)
	payload, err := io.ReadAll(reader)
	require.NoError(t, err)

	var got reconcile.RunReport
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", got.RunID)
	assert.Equal(t, 2, got.Created)
}

func TestStore_UploadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "sync-reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	store := NewStore(client, "sync-reports", zap.NewNop())

	name, err := store.Upload(context.Background(), reportFixture())
	assert.Error(t, err)
	assert.Empty(t, name)
}

func TestStore_Fetch(t *testing.T) {
	report := reportFixture()
	payload, err := json.Marshal(report)
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "sync-reports", "reports/x.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)

	store := NewStore(client, "sync-reports", zap.NewNop())

	got, err := store.Fetch(context.Background(), "reports/x.json")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, report.Instance, got.Instance)
}

func TestStore_EnsureBucket(t *testing.T) {
	t.Run("AlreadyExists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "sync-reports").Return(true, nil)

		store := NewStore(client, "sync-reports", zap.NewNop())
		require.NoError(t, store.EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "sync-reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "sync-reports", mock.Anything).Return(nil)

		store := NewStore(client, "sync-reports", zap.NewNop())
		require.NoError(t, store.EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})
}
