package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gatebot/pkg/logger"
	"gatebot/storage"
)

type settingRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSettingRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISettingStorage {
	return &settingRepo{db: db, log: log}
}

// Get returns the stored value, or writes the default on first access and
// returns that. The fill uses DO NOTHING so a concurrent writer wins.
func (r *settingRepo) Get(ctx context.Context, key, defaultValue string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, "SELECT value FROM settings WHERE key=$1", key).Scan(&value)
	if err == nil {
		return value, nil
	}
	if err != pgx.ErrNoRows {
		r.log.Error("failed to get setting", logger.String("key", key), logger.Error(err))
		return "", err
	}

	_, err = r.db.Exec(ctx,
		"INSERT INTO settings(key, value) VALUES($1, $2) ON CONFLICT (key) DO NOTHING",
		key, defaultValue,
	)
	if err != nil {
		r.log.Error("failed to fill default setting", logger.String("key", key), logger.Error(err))
		return "", err
	}
	return defaultValue, nil
}

func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO settings(key, value) VALUES($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		key, value,
	)
	if err != nil {
		r.log.Error("failed to set setting", logger.String("key", key), logger.Error(err))
	}
	return err
}

func (r *settingRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}
