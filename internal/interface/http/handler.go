package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
	"github.com/yanqian/ai-astrology/internal/domain/history"
	"github.com/yanqian/ai-astrology/internal/infra/llm/gateway"
	"github.com/yanqian/ai-astrology/pkg/util"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

const recordTimeout = 5 * time.Second

// ProviderChain exposes the active AI provider fallback order.
type ProviderChain interface {
	Chain() []gateway.ProviderID
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	reports astroreport.Service
	history history.Service
	chain   ProviderChain
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(reports astroreport.Service, historySvc history.Service, chain ProviderChain, logger *slog.Logger) *Handler {
	return &Handler{
		reports: reports,
		history: historySvc,
		chain:   chain,
		logger:  logger.With("component", "http.handler"),
	}
}

type reportResponse struct {
	Success  bool                   `json:"success"`
	Data     astroreport.ReportData `json:"data"`
	Location string                 `json:"location"`
}

// GenerateReport runs the chart and narrative pipeline for one birth input.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req astroreport.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "invalid request body", err))
		return
	}

	start := time.Now()
	report, err := h.reports.Generate(c.Request.Context(), req)
	reportID := h.record(c.Request.Context(), req, report, err, time.Since(start))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	report.Data.ReportID = reportID
	c.JSON(http.StatusOK, reportResponse{Success: true, Data: report.Data, Location: report.Location})
}

// record stores the outcome on a context detached from the request, which may
// already be past its deadline.
func (h *Handler) record(ctx context.Context, req astroreport.Request, report astroreport.Report, genErr error, elapsed time.Duration) string {
	if h.history == nil {
		return ""
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	return h.history.Record(recordCtx, req, report, genErr, elapsed)
}

// GetReport returns an archived report by id.
func (h *Handler) GetReport(c *gin.Context) {
	if h.history == nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "report archive disabled", nil))
		return
	}
	record, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	data := record.Report.Data
	data.ReportID = record.ID
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      data,
		"location":  record.Report.Location,
		"request":   record.Request,
		"createdAt": record.CreatedAt,
	})
}

// ListRuns returns the most recent generation runs.
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "runs": []history.RunRecord{}})
		return
	}
	runs, err := h.history.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "runs": runs})
}

// Providers lists the AI provider ids in fallback order.
func (h *Handler) Providers(c *gin.Context) {
	ids := []string{}
	if h.chain != nil {
		for _, id := range h.chain.Chain() {
			ids = append(ids, string(id))
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "providers": ids})
}

// Ping is a liveness probe.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server is running!"})
}

// Health reports service status and version.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "healthy",
		"timestamp": util.ISOTimestamp(util.NowUTC()),
		"version":   Version,
	})
}
