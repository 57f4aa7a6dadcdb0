package service

import (
	"context"

	"gatebot/pkg/logger"
	"gatebot/storage"
)

// SettingBotEnabled is the global gate switch: "1" on, "0" off.
const SettingBotEnabled = "bot_enabled"

// MembershipOracle answers channel-membership queries. Failures degrade to
// "not a member" inside the implementation; the state machine never sees them.
type MembershipOracle interface {
	CheckAll(ctx context.Context, userID int64, channels []string) []string
}

// ResourceProvider supplies the server list. An empty fetch means
// "temporarily unavailable", never an error.
type ResourceProvider interface {
	Fetch(ctx context.Context) []string
	SampleThree(items []string) []string
}

type IServiceManager interface {
	Onboarding() OnboardingService
	Admin() AdminService
}

type service struct {
	onboardingService OnboardingService
	adminService      AdminService
}

func New(stg storage.IStorage, oracle MembershipOracle, prv ResourceProvider, adminID int64, log logger.ILogger) IServiceManager {
	return &service{
		onboardingService: NewOnboardingService(stg, oracle, prv, adminID, log),
		adminService:      NewAdminService(stg, log),
	}
}

func (s *service) Onboarding() OnboardingService {
	return s.onboardingService
}

func (s *service) Admin() AdminService {
	return s.adminService
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
