package port

import (
	"context"
	"figview/internal/core/domain"
)

type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
}

type RecordLookup interface {
	// RecordInfo fetches the remote record for an identifier; domain.ErrRecordNotFound when absent.
	RecordInfo(ctx context.Context, id string) (domain.RecordInfo, error)
}
