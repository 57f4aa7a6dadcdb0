package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gatebot/pkg/logger"
	"gatebot/storage"
)

type channelRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewChannelRepo(db *pgxpool.Pool, log logger.ILogger) storage.IChannelStorage {
	return &channelRepo{db: db, log: log}
}

func (r *channelRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT username FROM channels ORDER BY id ASC")
	if err != nil {
		r.log.Error("failed to list channels", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		channels = append(channels, username)
	}
	return channels, rows.Err()
}

func (r *channelRepo) Add(ctx context.Context, username string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		"INSERT INTO channels(username) VALUES($1) ON CONFLICT (username) DO NOTHING",
		username,
	)
	if err != nil {
		r.log.Error("failed to add channel", logger.String("channel", username), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *channelRepo) Remove(ctx context.Context, username string) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM channels WHERE username=$1", username)
	if err != nil {
		r.log.Error("failed to remove channel", logger.String("channel", username), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *channelRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM channels").Scan(&count)
	return count, err
}
