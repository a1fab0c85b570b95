package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/mock"
)

// fakeStore is a testify mock of MinIOAPI.  PutObject drains its reader into
// uploads so tests can assert on the written bytes; RemoveObjects drains its
// channel and matches on the collected keys.
type fakeStore struct {
	mock.Mock
	uploads map[string][]byte
}

var _ MinIOAPI = (*fakeStore)(nil)

func (f *fakeStore) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	ret := f.Called(ctx)
	buckets, _ := ret.Get(0).([]minio.BucketInfo)
	return buckets, ret.Error(1)
}

func (f *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ret := f.Called(ctx, bucket)
	return ret.Bool(0), ret.Error(1)
}

func (f *fakeStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return f.Called(ctx, bucket, opts).Error(0)
}

func (f *fakeStore) SetBucketLifecycle(ctx context.Context, bucket string, rules *lifecycle.Configuration) error {
	return f.Called(ctx, bucket, rules).Error(0)
}

func (f *fakeStore) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return f.Called(ctx, bucket, opts).Get(0).(<-chan minio.ObjectInfo)
}

func (f *fakeStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params url.Values) (*url.URL, error) {
	ret := f.Called(ctx, bucket, object, expiry, params)
	link, _ := ret.Get(0).(*url.URL)
	return link, ret.Error(1)
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(r)
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[object] = data
	ret := f.Called(ctx, bucket, object, size, opts)
	info, _ := ret.Get(0).(minio.UploadInfo)
	return info, ret.Error(1)
}

func (f *fakeStore) RemoveObjects(ctx context.Context, bucket string, objects <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	var keys []string
	for obj := range objects {
		keys = append(keys, obj.Key)
	}
	return f.Called(ctx, bucket, keys, opts).Get(0).(<-chan minio.RemoveObjectError)
}

func (f *fakeStore) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	ret := f.Called(ctx, bucket, object, opts)
	info, _ := ret.Get(0).(minio.ObjectInfo)
	return info, ret.Error(1)
}

// feed returns a closed channel holding items.
func feed[T any](items ...T) <-chan T {
	ch := make(chan T, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}

//Personal.AI order the ending
