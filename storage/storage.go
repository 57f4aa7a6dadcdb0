package storage

import (
	"context"

	"gatebot/pkg/models"
)

type IStorage interface {
	Setting() ISettingStorage
	Channel() IChannelStorage
	User() IUserStorage
	Close()
}

// ISettingStorage is the durable key/value settings table. A missing key is
// never an error: Get fills in the default on first access and returns it.
type ISettingStorage interface {
	Get(ctx context.Context, key, defaultValue string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// IChannelStorage holds the required-channel set in insertion order.
// Add reports false on duplicates, Remove reports false on absent rows;
// neither case is an error.
type IChannelStorage interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, username string) (bool, error)
	Remove(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// IUserStorage is the identity ledger. Upsert must be a single atomic
// statement: two near-simultaneous touches of the same identity must not
// lose an update, and a nil phone must never overwrite a stored one.
type IUserStorage interface {
	Upsert(ctx context.Context, teleID int64, username *string, phone *string) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	CountWithPhone(ctx context.Context) (int, error)
}
