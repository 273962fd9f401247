package reports_test

import (
	"context"
	"testing"
	"time"

	"report-service/core/storage/mocks"
	"report-service/feature/reports"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestArchiverStore(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "reports", mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	archiver := reports.NewArchiver(client, "reports", "reports")
	report := &reports.Report{
		RootID:      "root-node",
		GeneratedAt: time.Now().Format(time.RFC3339),
		Documents:   0,
		Rows:        []reports.Row{},
	}

	key, err := archiver.Store(context.Background(), report)
	assert.NoError(t, err)
	assert.Contains(t, key, "reports/root-node/")
	assert.Contains(t, key, ".json")

	client.AssertExpectations(t)
}

func TestArchiverStoreExistingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	client.On("PutObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	archiver := reports.NewArchiver(client, "reports", "")
	_, err := archiver.Store(context.Background(), &reports.Report{RootID: "root-node"})
	assert.NoError(t, err)

	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiverList(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "reports/root-node/20240101T000000Z.json"}
	ch <- minio.ObjectInfo{Key: "reports/root-node/20240102T000000Z.json"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	archiver := reports.NewArchiver(client, "reports", "reports")
	keys, err := archiver.List(context.Background(), "root-node")
	assert.NoError(t, err)
	assert.Len(t, keys, 2)
}
