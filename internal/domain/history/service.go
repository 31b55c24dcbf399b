package history

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
	apperrors "github.com/yanqian/ai-astrology/pkg/errors"
	"github.com/yanqian/ai-astrology/pkg/util"
)

// Service keeps generated reports and the run log. Both sit beside the report
// pipeline: storage failures are logged and never fail a generation.
type Service interface {
	Record(ctx context.Context, req astroreport.Request, report astroreport.Report, genErr error, elapsed time.Duration) string
	Get(ctx context.Context, id string) (ArchivedReport, error)
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

type service struct {
	cfg     Config
	archive Archive
	runs    RunLog
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewService wires the history domain. A nil archive or run log disables that half.
func NewService(cfg Config, archive Archive, runs RunLog, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &service{
		cfg:     cfg,
		archive: archive,
		runs:    runs,
		logger:  logger.With("component", "history.service"),
		now:     util.NowUTC,
		newID:   uuid.NewString,
	}
}

// Record archives a successful report and appends a run entry either way. It
// returns the archive id, or "" when nothing was archived.
func (s *service) Record(ctx context.Context, req astroreport.Request, report astroreport.Report, genErr error, elapsed time.Duration) string {
	now := s.now()
	reportID := ""
	if genErr == nil && s.archive != nil {
		id := s.newID()
		report.Data.ReportID = id
		err := s.archive.Save(ctx, ArchivedReport{ID: id, CreatedAt: now, Request: req, Report: report}, s.cfg.ArchiveTTL)
		if err != nil {
			s.logger.Warn("report archive failed", "error", err)
		} else {
			reportID = id
		}
	}

	if s.runs == nil {
		return reportID
	}
	outcome := "ok"
	if genErr != nil {
		outcome = apperrors.CodeOf(genErr)
		if outcome == "" {
			outcome = "internal_error"
		}
	}
	run := RunRecord{
		ID:           s.newID(),
		CreatedAt:    now,
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		ResolvedName: report.Location,
		SunSign:      report.Data.SunSign,
		MoonSign:     report.Data.MoonSign,
		RisingSign:   report.Data.RisingSign,
		Mode:         report.Data.CalculationMode,
		ReportID:     reportID,
		Outcome:      outcome,
		DurationMs:   elapsed.Milliseconds(),
	}
	if err := s.runs.Append(ctx, run); err != nil {
		s.logger.Warn("run log append failed", "error", err)
	}
	return reportID
}

func (s *service) Get(ctx context.Context, id string) (ArchivedReport, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return ArchivedReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "report id must be a uuid", err)
	}
	if s.archive == nil {
		return ArchivedReport{}, apperrors.Wrap(apperrors.CodeNotFound, "report archive disabled", nil)
	}
	record, err := s.archive.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ArchivedReport{}, apperrors.Wrap(apperrors.CodeNotFound, "report not found", err)
		}
		return ArchivedReport{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load report", err)
	}
	return record, nil
}

func (s *service) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.runs == nil {
		return []RunRecord{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	runs, err := s.runs.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list runs", err)
	}
	if runs == nil {
		runs = []RunRecord{}
	}
	return runs, nil
}
