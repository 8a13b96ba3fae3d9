//go:build unit || e2e

package fakes

import (
	"context"
	"slices"
	"sync"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemoryStore implements shared.UnitOfWork over a map. Transactions run one at a time,
// which gives the serializable behaviour the create flow expects, and roll back on error.
type MemoryStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	bookings map[int64]*booking.Booking
	nextID   int64

	// AfterFind runs inside the transaction after FindByID, to simulate a concurrent writer.
	AfterFind func(id int64)
	// Fail injects an error into the named repository method.
	Fail func(method string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[int64]*booking.Booking)}
}

var _ shared.UnitOfWork = (*MemoryStore)(nil)

func (s *MemoryStore) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, fn)
}

func (s *MemoryStore) WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, fn)
}

func (s *MemoryStore) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db query.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *MemoryStore) WithDB(ctx context.Context, fn func(ctx context.Context, db query.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *MemoryStore) run(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot, nextID := s.snapshot()
	if err := fn(ctx, &memTx{store: s}); err != nil {
		s.mu.Lock()
		s.bookings, s.nextID = snapshot, nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) snapshot() (map[int64]*booking.Booking, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]*booking.Booking, len(s.bookings))
	for id, b := range s.bookings {
		out[id] = clone(b)
	}
	return out, s.nextID
}

// Seed stores a booking as if created earlier and returns its id.
func (s *MemoryStore) Seed(b *booking.Booking) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.bookings[s.nextID] = booking.ReconstructBooking(s.nextID, b.CreatorID(), b.ParticipantID(), b.Slot(), b.Status(), b.CreatedAt(), b.UpdatedAt())
	return s.nextID
}

// SetStatus changes a row outside any transaction.
func (s *MemoryStore) SetStatus(id int64, status booking.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	s.bookings[id] = booking.ReconstructBooking(b.ID(), b.CreatorID(), b.ParticipantID(), b.Slot(), status, b.CreatedAt(), b.UpdatedAt())
}

func (s *MemoryStore) Get(id int64) (*booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return clone(b), true
}

func (s *MemoryStore) All() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, clone(b))
	}
	slices.SortFunc(out, func(a, b *booking.Booking) int { return int(a.ID() - b.ID()) })
	return out
}

func clone(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(b.ID(), b.CreatorID(), b.ParticipantID(), b.Slot(), b.Status(), b.CreatedAt(), b.UpdatedAt())
}

type memTx struct {
	store *MemoryStore
}

func (t *memTx) Bookings() shared.BookingRepository { return &memRepo{store: t.store} }
func (t *memTx) DB() query.DBTX                     { return nil }

type memRepo struct {
	store *MemoryStore
}

func (r *memRepo) fail(method string) error {
	if r.store.Fail != nil {
		return r.store.Fail(method)
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, _ query.DBTX, b *booking.Booking) (int64, error) {
	if err := r.fail("Create"); err != nil {
		return 0, infra.WrapRepoErr("failed to create booking", err)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.bookings {
		if e.Status().Blocks() && e.CreatorID() == b.CreatorID() && e.ParticipantID() == b.ParticipantID() &&
			e.Slot().Start().Equal(b.Slot().Start()) {
			return 0, infra.WrapRepoErr("failed to create booking", &pgconn.PgError{Code: "23505", Message: "bookings_active_slot_uidx"})
		}
	}
	s.nextID++
	s.bookings[s.nextID] = booking.ReconstructBooking(s.nextID, b.CreatorID(), b.ParticipantID(), b.Slot(), b.Status(), b.CreatedAt(), b.UpdatedAt())
	return s.nextID, nil
}

func (r *memRepo) FindByID(_ context.Context, _ query.DBTX, id int64) (*booking.Booking, error) {
	if err := r.fail("FindByID"); err != nil {
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	b, ok := r.store.Get(id)
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", pgx.ErrNoRows)
	}
	if r.store.AfterFind != nil {
		r.store.AfterFind(id)
	}
	return b, nil
}

func (r *memRepo) FindConflicting(_ context.Context, _ query.DBTX, f shared.ConflictFilter) ([]*booking.Booking, error) {
	if err := r.fail("FindConflicting"); err != nil {
		return nil, infra.WrapRepoErr("failed to find conflicting bookings", err)
	}
	var out []*booking.Booking
	for _, b := range r.store.All() {
		party := slices.Contains(f.PartyIDs, b.CreatorID()) || slices.Contains(f.PartyIDs, b.ParticipantID())
		if party && slices.Contains(f.Statuses, b.Status()) &&
			b.Slot().Start().Before(f.End) && b.Slot().End().After(f.Start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, _ query.DBTX, u shared.StatusUpdate) (*booking.Booking, error) {
	if err := r.fail("UpdateStatus"); err != nil {
		return nil, infra.WrapRepoErr("failed to update booking status", err)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[u.BookingID]
	matches := ok && b.Status() == u.From
	switch u.Actor {
	case booking.RoleCreator:
		matches = matches && b.CreatorID() == u.ActorID
	case booking.RoleParticipant:
		matches = matches && b.ParticipantID() == u.ActorID
	default:
		matches = false
	}
	if !matches {
		return nil, infra.WrapRepoErr("booking status changed concurrently", pgx.ErrNoRows)
	}
	updated := booking.ReconstructBooking(b.ID(), b.CreatorID(), b.ParticipantID(), b.Slot(), u.To, b.CreatedAt(), u.At)
	s.bookings[u.BookingID] = updated
	return clone(updated), nil
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.BookingEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, e shared.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.Err
}

func (p *RecordingPublisher) Events() []shared.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.BookingEvent(nil), p.events...)
}
