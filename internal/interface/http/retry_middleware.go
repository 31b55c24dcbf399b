package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yanqian/ai-astrology/internal/infra/config"
)

const retryAttemptsHeader = "X-Retry-Attempts"

// withRetry replays reads that failed with a transient 5xx. Only GET is
// replayed: report generation costs several provider calls per attempt and
// reads carry no body, so nothing needs buffering on the way in.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodGet {
			handler.ServeHTTP(w, r)
			return
		}

		var buffered *bufferedResponse
		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if attempt > 1 {
				if !sleepCtx(r, cfg.BaseBackoff*time.Duration(1<<(attempt-2))) {
					break
				}
				logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", buffered.status, "attempt", attempt)
			}

			buffered = newBufferedResponse()
			handler.ServeHTTP(buffered, r.Clone(r.Context()))
			buffered.header.Set(retryAttemptsHeader, strconv.Itoa(attempt))
			if !buffered.transient() {
				break
			}
		}
		buffered.commit(w)
	})
}

// sleepCtx waits for d unless the request is cancelled first.
func sleepCtx(r *http.Request, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header    http.Header
	body      bytes.Buffer
	status    int
	wroteHead bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHead {
		return
	}
	b.status = status
	b.wroteHead = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

// transient reports a server failure worth replaying. A gateway timeout already
// spent the whole deadline and is returned as is.
func (b *bufferedResponse) transient() bool {
	return b.status >= http.StatusInternalServerError && b.status != http.StatusGatewayTimeout
}

func (b *bufferedResponse) commit(dst http.ResponseWriter) {
	header := dst.Header()
	for k, values := range b.header {
		header[k] = append([]string(nil), values...)
	}
	dst.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = dst.Write(b.body.Bytes())
	}
}
