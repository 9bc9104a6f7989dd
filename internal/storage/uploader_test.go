package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	obsmetrics "github.com/heysheet/heysheet/internal/observability/metrics"
	"github.com/heysheet/heysheet/internal/plan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *memoryStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

func (m *memoryStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.test/" + key, nil
}

func memFile(field, filename, contentType string, size int64) File {
	return File{
		FieldName:   field,
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", int(size)))), nil
		},
	}
}

func uploadForm(node *snowflake.Node) *formdomain.Form {
	return &formdomain.Form{
		ID:             node.Generate(),
		UserID:         "user-1",
		Title:          "Contact",
		UploadsEnabled: true,
		Active:         true,
	}
}

func TestUploadAllReturnsSignedURLs(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	store := &memoryStore{}
	uploader := NewUploader(zap.NewNop(), store, nil)

	urls, err := uploader.UploadAll(context.Background(), uploadForm(node), plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("resume", "resume.pdf", "application/pdf", 1024),
		memFile("photo", "photo.png", "image/png", 2048),
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Contains(t, urls["resume"], "https://signed.test/")
	assert.Len(t, store.keys, 2)
}

func TestUploadAllNoFilesIsNoop(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	uploader := NewUploader(zap.NewNop(), nil, nil)

	urls, err := uploader.UploadAll(context.Background(), uploadForm(node), plan.LimitsFor(plan.TierFree), node.Generate(), nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestUploadAllRejectsWhenUploadsDisabled(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	uploader := NewUploader(zap.NewNop(), &memoryStore{}, nil)
	form := uploadForm(node)
	form.UploadsEnabled = false

	_, err := uploader.UploadAll(context.Background(), form, plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("f", "a.txt", "text/plain", 10),
	})

	var policyErr *PolicyError
	assert.ErrorAs(t, err, &policyErr)
}

func TestUploadAllRecordsUploadOutcomes(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	m := obsmetrics.New(prometheus.NewRegistry())
	uploader := NewUploader(zap.NewNop(), &memoryStore{}, m)

	_, err := uploader.UploadAll(context.Background(), uploadForm(node), plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("resume", "resume.pdf", "application/pdf", 1024),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileUploadsTotal.WithLabelValues("uploaded")))

	form := uploadForm(node)
	form.UploadsEnabled = false
	_, err = uploader.UploadAll(context.Background(), form, plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("resume", "resume.pdf", "application/pdf", 1024),
	})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileUploadsTotal.WithLabelValues("rejected")))
}

func TestUploadAllRejectsWhenStoreNotConfigured(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	uploader := NewUploader(zap.NewNop(), nil, nil)

	// Uploads enabled on the form but no object store behind the uploader:
	// the request must be rejected before any upload goroutine starts.
	_, err := uploader.UploadAll(context.Background(), uploadForm(node), plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("resume", "resume.pdf", "application/pdf", 1024),
	})

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Reason, "not configured")
}

func TestUploadAllRejectsTooManyFiles(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	uploader := NewUploader(zap.NewNop(), &memoryStore{}, nil)

	var files []File
	for i := 0; i < 4; i++ {
		files = append(files, memFile(fmt.Sprintf("f%d", i), "a.txt", "text/plain", 10))
	}

	// Free tier allows 3 files per submission.
	_, err := uploader.UploadAll(context.Background(), uploadForm(node), plan.LimitsFor(plan.TierFree), node.Generate(), files)

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Reason, "too many files")
}

func TestUploadAllRejectsOversizedFileWithMBMessage(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	store := &memoryStore{}
	uploader := NewUploader(zap.NewNop(), store, nil)

	limits := plan.LimitsFor(plan.TierFree)
	_, err := uploader.UploadAll(context.Background(), uploadForm(node), limits, node.Generate(), []File{
		memFile("big", "huge.bin", "application/octet-stream", limits.MaxFileSizeBytes()+1),
	})

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Reason, `"huge.bin"`)
	assert.Contains(t, policyErr.Reason, "5 MB")
}

func TestUploadAllMimeFiltering(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	store := &memoryStore{}
	uploader := NewUploader(zap.NewNop(), store, nil)
	form := uploadForm(node)
	form.AllowedMimeTypes = []string{"image/*", "application/pdf"}

	_, err := uploader.UploadAll(context.Background(), form, plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("photo", "a.png", "image/png", 10),
		memFile("doc", "a.pdf", "application/pdf", 10),
	})
	require.NoError(t, err)

	_, err = uploader.UploadAll(context.Background(), form, plan.LimitsFor(plan.TierFree), node.Generate(), []File{
		memFile("script", "a.sh", "text/x-shellscript", 10),
	})
	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Reason, "text/x-shellscript")
}

func TestObjectKeyLayout(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	formID := node.Generate()
	subID := node.Generate()

	key := objectKey(formID, subID, "my resume.pdf")

	assert.True(t, strings.HasPrefix(key, fmt.Sprintf("forms/%s/%s/", formID, subID)))
	assert.True(t, strings.HasSuffix(key, "_my_resume.pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b.txt", sanitizeFilename("a b.txt"))
	assert.Equal(t, "a_b", sanitizeFilename("a/b"))
	assert.Equal(t, "file", sanitizeFilename("  "))
}
