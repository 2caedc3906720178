package biz

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/internal/model"
)

// AuditRecorder records denied access attempts. Recording is
// fire-and-forget: implementations must never block the access decision
// nor surface write failures to the caller.
type AuditRecorder interface {
	Record(record *model.AccessAudit)
	Close()
}

// auditWriteTimeout bounds a single background audit insert.
const auditWriteTimeout = 5 * time.Second

// asyncAuditor writes audit records through a bounded worker pool.
// When the pool is saturated the record is dropped and logged; losing an
// audit row is preferable to stalling request handling.
type asyncAuditor struct {
	store store.AuditStore
	pool  *ants.Pool

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewAsyncAuditor creates an audit recorder with the given worker count.
func NewAsyncAuditor(auditStore store.AuditStore, workers int) (AuditRecorder, error) {
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &asyncAuditor{
		store:   auditStore,
		pool:    pool,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Record submits one audit record for background persistence.
func (a *asyncAuditor) Record(record *model.AccessAudit) {
	record.ID = a.newID()

	err := a.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := a.store.Create(ctx, record); err != nil {
			logger.Warnw("audit write failed",
				"route", record.Route,
				"reason", record.Reason,
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		logger.Warnw("audit record dropped, worker pool saturated",
			"route", record.Route,
			"reason", record.Reason,
		)
	}
}

// Close releases the worker pool.
func (a *asyncAuditor) Close() {
	a.pool.Release()
}

func (a *asyncAuditor) newID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
}

// NopAuditor discards all records. Used when auditing is disabled.
type NopAuditor struct{}

// Record implements AuditRecorder.
func (NopAuditor) Record(*model.AccessAudit) {}

// Close implements AuditRecorder.
func (NopAuditor) Close() {}
