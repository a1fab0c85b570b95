package profiling

import (
	"context"
	"time"

	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// HitPublisher announces profiled frames to downstream consumers.
type HitPublisher interface {
	PublishHits(ctx context.Context, events []profile.HitEvent) error
}

// ExportStore keeps export files.  Keys are slash separated; a prefix names
// a directory.
type ExportStore interface {
	PutExport(ctx context.Context, key string, data []byte, contentType string) error
	ListExports(ctx context.Context, prefix string, presign bool) ([]profile.ExportInfo, error)
	DeleteExports(ctx context.Context, prefix string) (int, error)
}

// StatsCache caches aggregated statistics by key.  GetOrSet fills dest from
// the cache or from loader.
type StatsCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
		loader func(ctx context.Context) (interface{}, error)) error
	Delete(ctx context.Context, keys ...string) error
}

//Personal.AI order the ending
