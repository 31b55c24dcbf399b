package history

import (
	"context"
	"errors"
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
)

// ErrNotFound is returned by archives for unknown or expired ids.
var ErrNotFound = errors.New("report not found")

// ArchivedReport is a generated report kept for later retrieval.
type ArchivedReport struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Request   astroreport.Request `json:"request"`
	Report    astroreport.Report  `json:"report"`
}

// RunRecord is one line of the generation run log.
type RunRecord struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Location     string    `json:"location"`
	ResolvedName string    `json:"resolvedName,omitempty"`
	SunSign      string    `json:"sunSign,omitempty"`
	MoonSign     string    `json:"moonSign,omitempty"`
	RisingSign   string    `json:"risingSign,omitempty"`
	Mode         string    `json:"calculationMode,omitempty"`
	ReportID     string    `json:"reportId,omitempty"`
	Outcome      string    `json:"outcome"`
	DurationMs   int64     `json:"durationMs"`
}

// Archive stores finished reports.
type Archive interface {
	Save(ctx context.Context, record ArchivedReport, ttl time.Duration) error
	Get(ctx context.Context, id string) (ArchivedReport, error)
}

// RunLog records every generation attempt.
type RunLog interface {
	Append(ctx context.Context, record RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}

// Config tunes retention.
type Config struct {
	ArchiveTTL   time.Duration
	DefaultLimit int
	MaxLimit     int
}
