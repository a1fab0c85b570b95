package minio

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ExportRepository stores export files in the export bucket.
type ExportRepository struct {
	client *Client
	logger logging.Logger
}

// NewExportRepository creates an ExportRepository.
func NewExportRepository(client *Client, log logging.Logger) *ExportRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ExportRepository{client: client, logger: log}
}

// PutExport uploads data under key.  An empty contentType is sniffed.
func (r *ExportRepository) PutExport(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrInvalidRequest
	}
	api, err := r.client.api()
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data[:min(512, len(data))])
	}

	info, err := api.PutObject(ctx, r.client.Bucket(), key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "upload of "+key+" failed")
	}
	r.logger.Debug("export uploaded",
		logging.String("bucket", r.client.Bucket()),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return nil
}

// StatExport returns the metadata of key.
func (r *ExportRepository) StatExport(ctx context.Context, key string) (*profile.ExportInfo, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	info, err := api.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.CodeStorageError, "stat of "+key+" failed")
	}
	return &profile.ExportInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// ListExports lists every object under prefix.  With presign set each entry
// carries a download URL.
func (r *ExportRepository) ListExports(ctx context.Context, prefix string, presign bool) ([]profile.ExportInfo, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	prefix = dirPrefix(prefix)

	out := make([]profile.ExportInfo, 0)
	for obj := range api.ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.CodeStorageError, "list of "+prefix+" failed")
		}
		e := profile.ExportInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		}
		if presign {
			if e.URL, err = r.client.PresignedGetURL(ctx, obj.Key, 0); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// DeleteExports removes every object under prefix and returns how many were
// removed.
func (r *ExportRepository) DeleteExports(ctx context.Context, prefix string) (int, error) {
	objects, err := r.ListExports(ctx, prefix, false)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}
	api, err := r.client.api()
	if err != nil {
		return 0, err
	}

	ch := make(chan minio.ObjectInfo, len(objects))
	for _, o := range objects {
		ch <- minio.ObjectInfo{Key: o.Key}
	}
	close(ch)

	failed := 0
	var firstErr error
	for rerr := range api.RemoveObjects(ctx, r.client.Bucket(), ch, minio.RemoveObjectsOptions{}) {
		failed++
		if firstErr == nil {
			firstErr = rerr.Err
		}
		r.logger.Warn("failed to remove export",
			logging.String("key", rerr.ObjectName),
			logging.Err(rerr.Err))
	}
	if firstErr != nil {
		return len(objects) - failed, errors.Wrap(firstErr, errors.CodeStorageError, "failed to remove exports under "+prefix)
	}
	return len(objects), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// dirPrefix makes a non-empty prefix end in "/" so "run-1" does not match
// "run-10".
func dirPrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

//Personal.AI order the ending
