//go:build unit || e2e

package builder

import (
	"encoding/json"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/infra/query"
)

type UserBuilder struct {
	ID           int64
	Name         string
	Email        string
	Availability availability.Schedule
}

// NewUserBuilder has no stored availability, so the default schedule applies.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:    1,
		Name:  "Test User",
		Email: "test@example.com",
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// AvailableOn replaces the schedule with a single daily window on the given days.
func (u *UserBuilder) AvailableOn(start, end availability.TimeOfDay, days ...time.Weekday) *UserBuilder {
	u.Availability = nil
	for _, d := range days {
		u.Availability = append(u.Availability, availability.Day{
			Day:   d,
			Times: []availability.Window{{Start: start, End: end}},
		})
	}
	return u
}

// AvailabilityJSON renders the schedule in its stored form; nil when unset.
func (u *UserBuilder) AvailabilityJSON() []byte {
	if u.Availability == nil {
		return nil
	}
	raw, err := json.Marshal(u.Availability)
	if err != nil {
		panic(err)
	}
	return raw
}

func (u *UserBuilder) BuildRow() query.User {
	return query.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Availability: u.AvailabilityJSON(),
	}
}

func (u *UserBuilder) BuildCreateParams() query.CreateUserParams {
	return query.CreateUserParams{
		Name:         u.Name,
		Email:        u.Email,
		Availability: u.AvailabilityJSON(),
	}
}
