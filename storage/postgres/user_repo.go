package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gatebot/pkg/logger"
	"gatebot/pkg/models"
	"gatebot/storage"
)

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

// Upsert touches the ledger in one statement. COALESCE keeps a previously
// captured phone when the new value is NULL.
func (r *userRepo) Upsert(ctx context.Context, teleID int64, username *string, phone *string) error {
	query := `
		INSERT INTO users (user_id, username, phone, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
			phone = COALESCE(EXCLUDED.phone, users.phone),
			joined_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, teleID, username, phone)
	if err != nil {
		r.log.Error("failed to upsert user", logger.Int64("user_id", teleID), logger.Error(err))
	}
	return err
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT user_id, username, phone, joined_at FROM users ORDER BY joined_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list users", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.TelegramID, &u.Username, &u.Phone, &u.JoinedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&count)
	return count, err
}

func (r *userRepo) CountWithPhone(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users WHERE phone IS NOT NULL").Scan(&count)
	return count, err
}
