package query

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Booking struct {
	ID            int64              `db:"id"`
	CreatorID     int64              `db:"creator_id"`
	ParticipantID int64              `db:"participant_id"`
	StartTime     pgtype.Timestamptz `db:"start_time"`
	EndTime       pgtype.Timestamptz `db:"end_time"`
	Status        string             `db:"status"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

type User struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Availability []byte `db:"availability"`
}
