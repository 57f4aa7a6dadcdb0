package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatebot/pkg/logger"
	"gatebot/pkg/models"
	"gatebot/storage"
)

// UserPageSize caps the user listing; the rest is reported as a remainder.
const UserPageSize = 50

// pendingInput marks which free-text prompt an admin is answering.
type pendingInput int

const (
	pendingNone pendingInput = iota
	pendingChannelAdd
	pendingChannelRemove
)

// InputKind classifies what became of a consumed free-text input.
type InputKind int

const (
	InputIgnored InputKind = iota // nothing was pending
	InputChannelAdded
	InputChannelExists
	InputChannelBadFormat
	InputChannelRemoved
	InputChannelMissing
)

type InputResult struct {
	Kind    InputKind
	Channel string
}

type Stats struct {
	Users     int
	WithPhone int
	Channels  int
	Enabled   bool
}

type AdminService interface {
	Enabled(ctx context.Context) (bool, error)
	// Toggle flips the gate switch and returns the new value.
	Toggle(ctx context.Context) (bool, error)

	AwaitChannelAdd(teleID int64)
	AwaitChannelRemove(teleID int64)
	// ConsumeInput resolves a pending prompt with the admin's next text
	// message. The pending state is cleared before anything else happens,
	// so no input — however malformed — leaves the admin stuck waiting.
	ConsumeInput(ctx context.Context, teleID int64, text string) (InputResult, error)

	Channels(ctx context.Context) ([]string, error)
	// Users returns the first page of the ledger plus the count left over.
	Users(ctx context.Context) ([]*models.User, int, error)
	Stats(ctx context.Context) (Stats, error)
	Export(ctx context.Context) (*models.Export, error)
}

type adminService struct {
	settings storage.ISettingStorage
	channels storage.IChannelStorage
	users    storage.IUserStorage
	log      logger.ILogger

	mu      sync.Mutex
	pending map[int64]pendingInput
}

func NewAdminService(stg storage.IStorage, log logger.ILogger) AdminService {
	return &adminService{
		settings: stg.Setting(),
		channels: stg.Channel(),
		users:    stg.User(),
		log:      log,
		pending:  make(map[int64]pendingInput),
	}
}

func (s *adminService) Enabled(ctx context.Context) (bool, error) {
	v, err := s.settings.Get(ctx, SettingBotEnabled, "1")
	return v == "1", err
}

func (s *adminService) Toggle(ctx context.Context) (bool, error) {
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return false, err
	}
	next := "0"
	if !enabled {
		next = "1"
	}
	if err := s.settings.Set(ctx, SettingBotEnabled, next); err != nil {
		return false, err
	}
	return !enabled, nil
}

func (s *adminService) AwaitChannelAdd(teleID int64) {
	s.setPending(teleID, pendingChannelAdd)
}

func (s *adminService) AwaitChannelRemove(teleID int64) {
	s.setPending(teleID, pendingChannelRemove)
}

func (s *adminService) ConsumeInput(ctx context.Context, teleID int64, text string) (InputResult, error) {
	s.mu.Lock()
	pending := s.pending[teleID]
	delete(s.pending, teleID)
	s.mu.Unlock()

	username := strings.TrimSpace(text)

	switch pending {
	case pendingChannelAdd:
		if !strings.HasPrefix(username, "@") {
			return InputResult{Kind: InputChannelBadFormat, Channel: username}, nil
		}
		added, err := s.channels.Add(ctx, username)
		if err != nil {
			return InputResult{}, err
		}
		if !added {
			return InputResult{Kind: InputChannelExists, Channel: username}, nil
		}
		return InputResult{Kind: InputChannelAdded, Channel: username}, nil

	case pendingChannelRemove:
		if !strings.HasPrefix(username, "@") {
			username = "@" + username
		}
		removed, err := s.channels.Remove(ctx, username)
		if err != nil {
			return InputResult{}, err
		}
		if !removed {
			return InputResult{Kind: InputChannelMissing, Channel: username}, nil
		}
		return InputResult{Kind: InputChannelRemoved, Channel: username}, nil

	default:
		return InputResult{Kind: InputIgnored}, nil
	}
}

func (s *adminService) Channels(ctx context.Context) ([]string, error) {
	return s.channels.List(ctx)
}

func (s *adminService) Users(ctx context.Context) ([]*models.User, int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(users) <= UserPageSize {
		return users, 0, nil
	}
	return users[:UserPageSize], len(users) - UserPageSize, nil
}

func (s *adminService) Stats(ctx context.Context) (Stats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	withPhone, err := s.users.CountWithPhone(ctx)
	if err != nil {
		return Stats{}, err
	}
	channels, err := s.channels.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: total, WithPhone: withPhone, Channels: channels, Enabled: enabled}, nil
}

func (s *adminService) Export(ctx context.Context) (*models.Export, error) {
	settings, err := s.settings.All(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Export{
		TakenAt:  time.Now().UTC(),
		Settings: settings,
		Channels: channels,
		Users:    users,
	}, nil
}

func (s *adminService) setPending(teleID int64, p pendingInput) {
	s.mu.Lock()
	s.pending[teleID] = p
	s.mu.Unlock()
}
