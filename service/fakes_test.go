package service

import (
	"context"
	"sync"
	"time"

	"gatebot/pkg/models"
	"gatebot/storage"
)

// The fakes below mirror the SQL contracts of the postgres repos: lazy
// default fill for settings, set semantics for channels, and the
// COALESCE phone retention rule for the ledger.

type fakeSettings struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{m: make(map[string]string)}
}

func (f *fakeSettings) Get(_ context.Context, key, defaultValue string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.m[key]; ok {
		return v, nil
	}
	f.m[key] = defaultValue
	return defaultValue, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return nil
}

func (f *fakeSettings) All(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out, nil
}

type fakeChannels struct {
	mu   sync.Mutex
	list []string
}

func (f *fakeChannels) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.list...), nil
}

func (f *fakeChannels) Add(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.list {
		if ch == username {
			return false, nil
		}
	}
	f.list = append(f.list, username)
	return true, nil
}

func (f *fakeChannels) Remove(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ch := range f.list {
		if ch == username {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChannels) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list), nil
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[int64]*models.User
	touch []int64 // most recent last
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]*models.User)}
}

func (f *fakeUsers) Upsert(_ context.Context, teleID int64, username *string, phone *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[teleID]
	if !ok {
		u = &models.User{TelegramID: teleID}
		f.byID[teleID] = u
	}
	u.Username = username
	if phone != nil {
		u.Phone = phone
	}
	u.JoinedAt = time.Now().UTC()

	for i, id := range f.touch {
		if id == teleID {
			f.touch = append(f.touch[:i], f.touch[i+1:]...)
			break
		}
	}
	f.touch = append(f.touch, teleID)
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.touch))
	for i := len(f.touch) - 1; i >= 0; i-- {
		out = append(out, f.byID[f.touch[i]])
	}
	return out, nil
}

func (f *fakeUsers) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

func (f *fakeUsers) CountWithPhone(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.byID {
		if u.Phone != nil {
			n++
		}
	}
	return n, nil
}

type fakeStorage struct {
	settings *fakeSettings
	channels *fakeChannels
	users    *fakeUsers
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		settings: newFakeSettings(),
		channels: &fakeChannels{},
		users:    newFakeUsers(),
	}
}

func (f *fakeStorage) Setting() storage.ISettingStorage { return f.settings }
func (f *fakeStorage) Channel() storage.IChannelStorage { return f.channels }
func (f *fakeStorage) User() storage.IUserStorage       { return f.users }
func (f *fakeStorage) Close()                           {}

// fakeOracle treats the member set as ground truth; everything else is
// "not a member", like the real fail-closed oracle.
type fakeOracle struct {
	mu      sync.Mutex
	members map[string]bool
	checked []string
}

func (f *fakeOracle) CheckAll(_ context.Context, _ int64, channels []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var unmet []string
	for _, ch := range channels {
		f.checked = append(f.checked, ch)
		if !f.members[ch] {
			unmet = append(unmet, ch)
		}
	}
	return unmet
}

type fakeProvider struct {
	servers []string
}

func (f *fakeProvider) Fetch(_ context.Context) []string {
	return f.servers
}

func (f *fakeProvider) SampleThree(items []string) []string {
	if len(items) <= 3 {
		return items
	}
	return items[:3]
}
