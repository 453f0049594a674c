package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

// ErrLogNotFound indicates the requested audit record does not exist.
var ErrLogNotFound = errors.New("access log not found")

// maxUserAgentLength bounds the stored user agent string.
const maxUserAgentLength = 255

const auditWriteTimeout = 5 * time.Second

// AuditRecorder persists audit records asynchronously. Record never
// blocks the caller: entries go through a bounded queue drained by a
// single worker, and a full queue drops the entry with a metric bump
// rather than stalling a request.
type AuditRecorder struct {
	logs port.AccessLogRepository
	log  *zap.Logger
	now  func() time.Time

	queue  chan domain.AccessLog
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool

	recorded      prometheus.Counter
	dropped       prometheus.Counter
	writeFailures prometheus.Counter
}

// NewAuditRecorder constructs the recorder and starts its worker.
func NewAuditRecorder(logs port.AccessLogRepository, log *zap.Logger, queueSize int) *AuditRecorder {
	if queueSize <= 0 {
		queueSize = 1024
	}

	r := &AuditRecorder{
		logs:  logs,
		log:   log,
		now:   time.Now,
		queue: make(chan domain.AccessLog, queueSize),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// WithMetrics attaches counters for accepted, dropped, and failed writes.
func (r *AuditRecorder) WithMetrics(recorded, dropped, writeFailures prometheus.Counter) *AuditRecorder {
	r.recorded = recorded
	r.dropped = dropped
	r.writeFailures = writeFailures
	return r
}

// WithClock overrides the time source, primarily for tests.
func (r *AuditRecorder) WithClock(now func() time.Time) *AuditRecorder {
	if now != nil {
		r.now = now
	}
	return r
}

// Record enqueues an audit entry. Missing ID and CreatedAt are filled
// in; the user agent is truncated to the stored column width.
func (r *AuditRecorder) Record(entry domain.AccessLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}
	if len(entry.UserAgent) > maxUserAgentLength {
		entry.UserAgent = entry.UserAgent[:maxUserAgentLength]
	}

	// The read lock orders Record against Close: a late caller sees the
	// closed flag instead of sending on a closed channel.
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		if r.dropped != nil {
			r.dropped.Inc()
		}
		r.log.Warn("audit recorder closed, dropping entry",
			zap.String("action", entry.Action),
			zap.String("path", entry.Path),
		)
		return
	}

	select {
	case r.queue <- entry:
		if r.recorded != nil {
			r.recorded.Inc()
		}
	default:
		if r.dropped != nil {
			r.dropped.Inc()
		}
		r.log.Warn("audit queue full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("path", entry.Path),
		)
	}
}

func (r *AuditRecorder) worker() {
	defer r.wg.Done()

	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		err := r.logs.Create(ctx, entry)
		cancel()

		if err != nil {
			if r.writeFailures != nil {
				r.writeFailures.Inc()
			}
			r.log.Error("persist audit entry",
				zap.Error(err),
				zap.String("action", entry.Action),
				zap.String("path", entry.Path),
			)
		}
	}
}

// Close stops accepting entries and drains the queue. It returns early
// with the context error when the deadline fires first.
func (r *AuditRecorder) Close(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.queue)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain audit queue: %w", ctx.Err())
	}
}

// AuditService reads the audit trail.
type AuditService struct {
	logs port.AccessLogRepository
}

// NewAuditService constructs an AuditService.
func NewAuditService(logs port.AccessLogRepository) *AuditService {
	return &AuditService{logs: logs}
}

// ListLogs returns audit records matching the filter.
func (s *AuditService) ListLogs(ctx context.Context, filter port.AccessLogFilter) ([]domain.AccessLog, error) {
	return s.logs.List(ctx, filter)
}

// GetLog retrieves a single audit record.
func (s *AuditService) GetLog(ctx context.Context, id string) (*domain.AccessLog, error) {
	entry, err := s.logs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("lookup access log: %w", err)
	}
	return entry, nil
}
