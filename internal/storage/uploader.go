package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	obsmetrics "github.com/heysheet/heysheet/internal/observability/metrics"
	"github.com/heysheet/heysheet/internal/plan"
	"go.uber.org/zap"
)

// PolicyError is a file-policy violation. It fails the whole submission and
// its message is returned to the submitter verbatim.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

// File is one multipart file field to upload. Open returns a fresh reader
// over the file content; the server backs it with a spooled temp file.
type File struct {
	FieldName   string
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type Uploader struct {
	log     *zap.Logger
	store   ObjectStore
	metrics *obsmetrics.Metrics
}

func NewUploader(log *zap.Logger, store ObjectStore, metrics *obsmetrics.Metrics) *Uploader {
	return &Uploader{
		log:     log.Named("storage.uploader"),
		store:   store,
		metrics: metrics,
	}
}

// UploadAll validates each file against the form's upload policy and the
// plan's size ceiling, uploads passing files, and returns field name to
// signed URL. Validation failure rejects the whole submission; files already
// uploaded in the same request are not removed.
func (u *Uploader) UploadAll(
	ctx context.Context,
	form *formdomain.Form,
	limits plan.Limits,
	submissionID snowflake.ID,
	files []File,
) (map[string]string, error) {
	if len(files) == 0 {
		return map[string]string{}, nil
	}

	if !form.UploadsEnabled || !limits.Features.FileUploads {
		u.metrics.RecordFileUpload("rejected")
		return nil, &PolicyError{Reason: "file uploads are not enabled for this form"}
	}
	if u.store == nil {
		u.log.Warn("upload rejected: no object store configured", zap.String("form_id", form.ID.String()))
		u.metrics.RecordFileUpload("rejected")
		return nil, &PolicyError{Reason: "file uploads are not configured"}
	}

	maxFiles := form.MaxFiles
	if maxFiles <= 0 || maxFiles > limits.MaxFilesPerSubmission {
		maxFiles = limits.MaxFilesPerSubmission
	}
	if len(files) > maxFiles {
		u.metrics.RecordFileUpload("rejected")
		return nil, &PolicyError{Reason: fmt.Sprintf("too many files: at most %d allowed per submission", maxFiles)}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		urls   = make(map[string]string, len(files))
		upErrs []error
	)

	for _, file := range files {
		if err := u.validate(form, limits, file); err != nil {
			// Uploads already in flight are left in place.
			wg.Wait()
			u.metrics.RecordFileUpload("rejected")
			return nil, err
		}

		wg.Add(1)
		go func(file File) {
			defer wg.Done()
			url, err := u.uploadOne(ctx, form.ID, submissionID, file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				u.metrics.RecordFileUpload("error")
				upErrs = append(upErrs, err)
				return
			}
			u.metrics.RecordFileUpload("uploaded")
			urls[file.FieldName] = url
		}(file)
	}

	wg.Wait()
	if len(upErrs) > 0 {
		return nil, fmt.Errorf("upload failed: %w", upErrs[0])
	}
	return urls, nil
}

func (u *Uploader) validate(form *formdomain.Form, limits plan.Limits, file File) error {
	contentType := strings.TrimSpace(file.ContentType)
	if len(form.AllowedMimeTypes) > 0 && !mimeAllowed(form.AllowedMimeTypes, contentType) {
		return &PolicyError{Reason: fmt.Sprintf("file type %q is not allowed", contentType)}
	}
	if file.Size > limits.MaxFileSizeBytes() {
		return &PolicyError{Reason: fmt.Sprintf("file %q exceeds the %d MB limit", file.Filename, limits.MaxFileSizeMB)}
	}
	return nil
}

func (u *Uploader) uploadOne(ctx context.Context, formID, submissionID snowflake.ID, file File) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := objectKey(formID, submissionID, file.Filename)
	contentType := file.ContentType

	if err := u.store.Put(ctx, key, src, contentType); err != nil {
		u.log.Warn("object upload failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", err
	}

	return u.store.PresignGet(ctx, key, SignedURLTTL)
}

func objectKey(formID, submissionID snowflake.ID, filename string) string {
	return fmt.Sprintf("forms/%s/%s/%s_%s",
		formID, submissionID, uuid.NewString()[:8], sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return replacer.Replace(name)
}

func mimeAllowed(allowed []string, contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == contentType {
			return true
		}
		// "image/*" style entries match on the major type.
		if strings.HasSuffix(candidate, "/*") &&
			strings.HasPrefix(contentType, strings.TrimSuffix(candidate, "*")) {
			return true
		}
	}
	return false
}
