package query

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, availability`

const getUsersByIDs = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::bigint[]) ORDER BY id`

func (q *Queries) GetUsersByIDs(ctx context.Context, db DBTX, ids []int64) ([]User, error) {
	rows, err := db.Query(ctx, getUsersByIDs, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[User])
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, db DBTX, id int64) (User, error) {
	rows, err := db.Query(ctx, getUserByID, id)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[User])
}

const createUser = `
INSERT INTO users (name, email, availability)
VALUES ($1, $2, $3)
RETURNING id`

type CreateUserParams struct {
	Name         string
	Email        string
	Availability []byte
}

func (q *Queries) CreateUser(ctx context.Context, db DBTX, arg CreateUserParams) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, createUser, arg.Name, arg.Email, arg.Availability).Scan(&id)
	return id, err
}
