package commands

import (
	"context"
	"log/slog"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/pkg/clock"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/shared"
	"meeting-scheduler/internal/usecase/slotlock"

	"github.com/google/uuid"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking_mock.go -package=commandsmock

var (
	ErrInvalidRequest        = errs.New("invalid booking request")
	ErrUnknownParty          = errs.New("booking party does not exist")
	ErrInconsistentDirectory = errs.New("user directory returned an inconsistent result")
	ErrSlotContended         = errs.New("slot is being booked concurrently")
	ErrBookingConflict       = errs.New("booking conflicts with an existing booking")
	ErrConcurrentUpdate      = errs.New("booking was modified concurrently")
	ErrBookingNotFound       = errs.New("booking not found")
	ErrNotBookingParty       = errs.New("caller is not a party to the booking")
	ErrDependency            = errs.New("booking dependency failed")
)

type CreateBookingRequest struct {
	CreatorID     int64
	ParticipantID int64
	StartTime     string
	EndTime       string
}

type CreateBookingResult struct {
	BookingID int64
}

type UpdateBookingStatusRequest struct {
	BookingID int64
	ActorID   int64
	Status    string
}

type BookingCommands interface {
	Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error)
	UpdateStatus(ctx context.Context, req UpdateBookingStatusRequest) (*booking.Booking, error)
}

// Settings bounds the create flow. RequestTimeout must stay below the lock TTL.
type Settings struct {
	RequestTimeout time.Duration
}

type bookingUseCaseImpl struct {
	uow       shared.UnitOfWork
	users     UserDirectory
	resolver  *availability.Resolver
	validator *booking.SlotValidator
	locker    SlotLocker
	conflicts *ConflictDetector
	events    shared.EventPublisher
	clock     clock.Clock
	settings  Settings
	logger    *slog.Logger
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	users UserDirectory,
	resolver *availability.Resolver,
	validator *booking.SlotValidator,
	locker SlotLocker,
	conflicts *ConflictDetector,
	events shared.EventPublisher,
	clk clock.Clock,
	settings Settings,
	logger *slog.Logger,
) BookingCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookingUseCaseImpl{
		uow:       uow,
		users:     users,
		resolver:  resolver,
		validator: validator,
		locker:    locker,
		conflicts: conflicts,
		events:    events,
		clock:     clk,
		settings:  settings,
		logger:    logger,
	}
}

func (uc *bookingUseCaseImpl) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	if err := booking.ValidateParties(req.CreatorID, req.ParticipantID); err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	if uc.settings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.settings.RequestTimeout)
		defer cancel()
	}

	parties, err := uc.resolveParties(ctx, req.CreatorID, req.ParticipantID)
	if err != nil {
		return nil, err
	}

	// Timing and availability failures return here, before any lock is touched.
	slot, err := uc.validator.Validate(req.StartTime, req.EndTime, parties)
	if err != nil {
		return nil, err
	}

	candidate, err := booking.NewBooking(req.CreatorID, req.ParticipantID, slot, uc.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	lockReq := slotlock.Request{
		CreatorID:     req.CreatorID,
		ParticipantID: req.ParticipantID,
		Start:         slot.Start(),
	}

	var bookingID int64
	err = uc.locker.WithLease(ctx, lockReq, func(ctx context.Context) error {
		return uc.uow.WithinSerializable(ctx, func(ctx context.Context, tx shared.Tx) error {
			if cerr := uc.conflicts.Check(ctx, tx, candidate); cerr != nil {
				return cerr
			}
			id, cerr := tx.Bookings().Create(ctx, tx.DB(), candidate)
			if cerr != nil {
				if infra.IsKind(cerr, infra.KindDuplicateKey) {
					return errs.Mark(cerr, ErrBookingConflict)
				}
				return cerr
			}
			bookingID = id
			return nil
		})
	})
	if err != nil {
		return nil, classifyCreateErr(err)
	}

	uc.logger.InfoContext(ctx, "booking created",
		"booking_id", bookingID,
		"creator_id", req.CreatorID,
		"participant_id", req.ParticipantID,
		"start", slot.Start().Format(time.RFC3339))

	uc.publish(ctx, shared.BookingEvent{
		Type:          shared.EventBookingCreated,
		BookingID:     bookingID,
		CreatorID:     candidate.CreatorID(),
		ParticipantID: candidate.ParticipantID(),
		StartTime:     slot.Start(),
		EndTime:       slot.End(),
		Status:        candidate.Status().String(),
		ActorID:       req.CreatorID,
	})

	return &CreateBookingResult{BookingID: bookingID}, nil
}

func (uc *bookingUseCaseImpl) UpdateStatus(ctx context.Context, req UpdateBookingStatusRequest) (*booking.Booking, error) {
	to, err := booking.ParseStatus(req.Status)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	var (
		updated  *booking.Booking
		previous booking.Status
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, derr := tx.Bookings().FindByID(ctx, tx.DB(), req.BookingID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(derr, ErrDependency)
		}

		role, ok := current.RoleOf(req.ActorID)
		if !ok {
			return ErrNotBookingParty
		}

		previous = current.Status()
		now := uc.clock.Now()
		if derr = current.Transition(role, to, now); derr != nil {
			return errs.Mark(derr, ErrInvalidRequest)
		}

		updated, derr = tx.Bookings().UpdateStatus(ctx, tx.DB(), shared.StatusUpdate{
			BookingID: req.BookingID,
			From:      previous,
			To:        to,
			Actor:     role,
			ActorID:   req.ActorID,
			At:        now,
		})
		if derr != nil {
			// zero rows: the status or ownership moved since the read above
			if infra.IsKind(derr, infra.KindNotFound) {
				return errs.Mark(derr, ErrConcurrentUpdate)
			}
			return errs.Mark(derr, ErrDependency)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "booking status changed",
		"booking_id", req.BookingID,
		"actor_id", req.ActorID,
		"from", previous.String(),
		"to", to.String())

	uc.publish(ctx, shared.BookingEvent{
		Type:           shared.EventBookingStatusChanged,
		BookingID:      updated.ID(),
		CreatorID:      updated.CreatorID(),
		ParticipantID:  updated.ParticipantID(),
		StartTime:      updated.Slot().Start(),
		EndTime:        updated.Slot().End(),
		Status:         updated.Status().String(),
		PreviousStatus: previous.String(),
		ActorID:        req.ActorID,
	})

	return updated, nil
}

// resolveParties fetches both users in one call and turns their stored availability into schedules.
func (uc *bookingUseCaseImpl) resolveParties(ctx context.Context, creatorID, participantID int64) (booking.Parties, error) {
	records, err := uc.users.FetchUsers(ctx, []int64{creatorID, participantID})
	if err != nil {
		return booking.Parties{}, errs.Mark(err, ErrDependency)
	}

	byID := make(map[int64]UserRecord, len(records))
	for _, r := range records {
		if r.ID != creatorID && r.ID != participantID {
			return booking.Parties{}, errs.Wrapf(ErrInconsistentDirectory, "unexpected user %d", r.ID)
		}
		if _, dup := byID[r.ID]; dup {
			return booking.Parties{}, errs.Wrapf(ErrInconsistentDirectory, "user %d returned twice", r.ID)
		}
		byID[r.ID] = r
	}

	creator, ok := byID[creatorID]
	if !ok {
		return booking.Parties{}, errs.Wrapf(ErrUnknownParty, "creator %d", creatorID)
	}
	participant, ok := byID[participantID]
	if !ok {
		return booking.Parties{}, errs.Wrapf(ErrUnknownParty, "participant %d", participantID)
	}

	return booking.Parties{
		Creator:     uc.resolver.Resolve(creator.Availability),
		Participant: uc.resolver.Resolve(participant.Availability),
	}, nil
}

// publish is best effort: the booking is already committed.
func (uc *bookingUseCaseImpl) publish(ctx context.Context, event shared.BookingEvent) {
	event.ID = uuid.NewString()
	event.OccurredAt = uc.clock.Now()
	if err := uc.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish booking event",
			"type", string(event.Type),
			"booking_id", event.BookingID,
			"error", err.Error())
	}
}

func classifyCreateErr(err error) error {
	switch {
	case errs.IsAny(err, slotlock.ErrSlotLocked, slotlock.ErrParticipantBusy, slotlock.ErrLockUnavailable):
		return errs.Mark(err, ErrSlotContended)
	case errs.IsAny(err, ErrBookingConflict, ErrDependency):
		return err
	default:
		return errs.Mark(err, ErrDependency)
	}
}
