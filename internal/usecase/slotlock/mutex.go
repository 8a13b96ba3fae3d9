package slotlock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meeting-scheduler/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

const (
	keyPrefix   = "booking:lock"
	lockValue   = "1"
	releaseWait = 5 * time.Second
)

var (
	// ErrSlotLocked means another request already holds the creator or participant key.
	ErrSlotLocked = errs.New("slot is locked by another booking attempt")
	// ErrParticipantBusy means the participant is creating their own booking for the slot.
	ErrParticipantBusy = errs.New("participant is creating a booking for this slot")
	// ErrLockUnavailable means the cache could not give a definite answer.
	ErrLockUnavailable = errs.New("slot lock is unavailable")
)

// Cache is the atomic key store the protocol arbitrates through.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type Request struct {
	CreatorID     int64
	ParticipantID int64
	Start         time.Time
}

func (r Request) CreatorKey() string {
	return lockKey("creator", r.CreatorID, r.Start)
}

func (r Request) ParticipantKey() string {
	return lockKey("participant", r.ParticipantID, r.Start)
}

// participantAsCreatorKey is the key the participant would hold if they were booking this slot themselves.
func (r Request) participantAsCreatorKey() string {
	return lockKey("creator", r.ParticipantID, r.Start)
}

func lockKey(role string, userID int64, start time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%d", keyPrefix, role, userID, start.Truncate(time.Minute).Unix()/60)
}

type Mutex struct {
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewMutex(cache Cache, ttl time.Duration, logger *slog.Logger) *Mutex {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutex{cache: cache, ttl: ttl, logger: logger}
}

// Lease is the set of keys one successful Acquire holds.
type Lease struct {
	mutex *Mutex
	keys  []string
	once  sync.Once
}

func (l *Lease) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Release deletes the held keys once. Failures are logged; the TTL reclaims the keys.
func (l *Lease) Release(ctx context.Context) {
	l.once.Do(func() {
		l.mutex.release(ctx, l.keys)
	})
}

// Acquire runs the participant check and both conditional sets concurrently. Any
// rejection deletes exactly the keys this call set before returning.
func (m *Mutex) Acquire(ctx context.Context, req Request) (*Lease, error) {
	var (
		participantBusy bool
		creatorSet      bool
		participantSet  bool
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		_, found, err := m.cache.Get(ctx, req.participantAsCreatorKey())
		participantBusy = found
		return errs.Wrap(err, "read participant creator lock")
	})
	g.Go(func() error {
		ok, err := m.cache.SetIfAbsent(ctx, req.CreatorKey(), lockValue, m.ttl)
		creatorSet = ok && err == nil
		return errs.Wrap(err, "set creator lock")
	})
	g.Go(func() error {
		ok, err := m.cache.SetIfAbsent(ctx, req.ParticipantKey(), lockValue, m.ttl)
		participantSet = ok && err == nil
		return errs.Wrap(err, "set participant lock")
	})
	err := g.Wait()

	acquired := make([]string, 0, 2)
	if creatorSet {
		acquired = append(acquired, req.CreatorKey())
	}
	if participantSet {
		acquired = append(acquired, req.ParticipantKey())
	}

	switch {
	case err != nil:
		return nil, m.reject(ctx, req, acquired, errs.Mark(err, ErrLockUnavailable))
	case participantBusy:
		return nil, m.reject(ctx, req, acquired, ErrParticipantBusy)
	case !creatorSet || !participantSet:
		return nil, m.reject(ctx, req, acquired, ErrSlotLocked)
	}

	// A mirror-image request may have set its creator key after our first read.
	_, found, err := m.cache.Get(ctx, req.participantAsCreatorKey())
	if err != nil {
		return nil, m.reject(ctx, req, acquired, errs.Mark(errs.Wrap(err, "confirm participant creator lock"), ErrLockUnavailable))
	}
	if found {
		return nil, m.reject(ctx, req, acquired, ErrParticipantBusy)
	}

	m.logger.Debug("slot lock acquired",
		"creator_id", req.CreatorID,
		"participant_id", req.ParticipantID,
		"start", req.Start.Format(time.RFC3339))
	return &Lease{mutex: m, keys: acquired}, nil
}

// WithLease runs fn while holding the slot lock and releases it on every exit path.
func (m *Mutex) WithLease(ctx context.Context, req Request, fn func(ctx context.Context) error) error {
	lease, err := m.Acquire(ctx, req)
	if err != nil {
		return err
	}
	defer lease.Release(ctx)
	return fn(ctx)
}

func (m *Mutex) reject(ctx context.Context, req Request, acquired []string, cause error) error {
	m.release(ctx, acquired)
	m.logger.Info("slot lock rejected",
		"creator_id", req.CreatorID,
		"participant_id", req.ParticipantID,
		"start", req.Start.Format(time.RFC3339),
		"reason", cause.Error())
	return cause
}

// release detaches from the caller's cancellation so an aborted request still frees its keys.
func (m *Mutex) release(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseWait)
	defer cancel()
	if err := m.cache.Delete(rctx, keys...); err != nil {
		m.logger.Warn("failed to release slot lock", "keys", keys, "error", err.Error())
	}
}
