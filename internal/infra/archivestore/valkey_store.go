package archivestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

// ValkeyStore persists archived reports as JSON strings with an expiry.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "astro"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Save(ctx context.Context, record history.ArchivedReport, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode archived report: %w", err)
	}
	builder := s.client.B().Set().Key(s.reportKey(record.ID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Get(ctx context.Context, id string) (history.ArchivedReport, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.reportKey(id)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return history.ArchivedReport{}, history.ErrNotFound
		}
		return history.ArchivedReport{}, err
	}
	var record history.ArchivedReport
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return history.ArchivedReport{}, fmt.Errorf("decode archived report: %w", err)
	}
	return record, nil
}

func (s *ValkeyStore) reportKey(id string) string {
	return fmt.Sprintf("%s:report:%s", s.prefix, id)
}

var _ history.Archive = (*ValkeyStore)(nil)
