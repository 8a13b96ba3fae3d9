package commands

import (
	"context"

	"meeting-scheduler/internal/usecase/slotlock"
)

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/commands/ports_mock.go -package=commandsmock

// UserRecord is the write-side view of a party: just enough to resolve working hours.
type UserRecord struct {
	ID           int64
	Availability []byte
}

type UserDirectory interface {
	FetchUsers(ctx context.Context, ids []int64) ([]UserRecord, error)
}

// SlotLocker scopes a critical section to a held slot lease. *slotlock.Mutex satisfies it.
type SlotLocker interface {
	WithLease(ctx context.Context, req slotlock.Request, fn func(ctx context.Context) error) error
}
