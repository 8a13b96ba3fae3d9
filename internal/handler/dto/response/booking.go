package response

import (
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/usecase/queries"
)

type CreateBookingResponse struct {
	BookingID int64 `json:"bookingId"`
}

type BookingResponse struct {
	ID            int64     `json:"id"`
	CreatorID     int64     `json:"creatorId"`
	ParticipantID int64     `json:"participantId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	Bookings   []*BookingResponse `json:"bookings"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

type WorkingHoursResponse struct {
	UserID   int64                 `json:"userId"`
	Schedule availability.Schedule `json:"schedule"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:            v.ID,
		CreatorID:     v.CreatorID,
		ParticipantID: v.ParticipantID,
		StartTime:     v.StartTime.UTC(),
		EndTime:       v.EndTime.UTC(),
		Status:        v.Status,
		CreatedAt:     v.CreatedAt.UTC(),
		UpdatedAt:     v.UpdatedAt.UTC(),
	}
}

func FromBooking(b *booking.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID(),
		CreatorID:     b.CreatorID(),
		ParticipantID: b.ParticipantID(),
		StartTime:     b.Slot().Start().UTC(),
		EndTime:       b.Slot().End().UTC(),
		Status:        b.Status().String(),
		CreatedAt:     b.CreatedAt().UTC(),
		UpdatedAt:     b.UpdatedAt().UTC(),
	}
}

func FromBookingList(views []*queries.BookingView, next *queries.Cursor) *BookingListResponse {
	res := &BookingListResponse{Bookings: make([]*BookingResponse, len(views))}
	for i, v := range views {
		res.Bookings[i] = FromBookingView(v)
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}

func FromWorkingHours(v *queries.WorkingHoursView) *WorkingHoursResponse {
	return &WorkingHoursResponse{UserID: v.UserID, Schedule: v.Schedule}
}
