package service

import (
	"context"
	"sync"

	"gatebot/pkg/logger"
	"gatebot/storage"
)

// FlowState is the position of one user in the onboarding journey. States
// live only in process memory; a restart puts everyone back at the gate.
type FlowState string

const (
	StateGate                 FlowState = "gate"
	StateAwaitingVerification FlowState = "awaiting_verification"
	StateAwaitingContact      FlowState = "awaiting_contact"
	StateDelivered            FlowState = "delivered"
)

// Step tells the transport layer what to render next. It is a closed set:
// every decision the state machine makes maps to exactly one of these.
type Step int

const (
	StepDisabled Step = iota
	StepJoinPrompt
	StepContactPrompt
	StepDelivered
	StepUnavailable
)

// Decision is the outcome of one inbound event.
type Decision struct {
	Step     Step
	Channels []string // full required set, for the join keyboard
	Unmet    []string // subset still unjoined, set on a failed verification
	Servers  []string // sampled servers, set on delivery
	Verified bool     // membership confirmed on this event
}

type OnboardingService interface {
	// Start handles a /start-equivalent event: gate check, ledger touch,
	// then either the join prompt or the contact prompt.
	Start(ctx context.Context, teleID int64, username string) (Decision, error)
	// Verify handles the "I've joined" affordance.
	Verify(ctx context.Context, teleID int64) (Decision, error)
	// Contact handles a shared phone number and delivers the servers.
	Contact(ctx context.Context, teleID int64, username, phone string) (Decision, error)
	State(teleID int64) FlowState
}

type onboardingService struct {
	settings storage.ISettingStorage
	channels storage.IChannelStorage
	users    storage.IUserStorage
	oracle   MembershipOracle
	provider ResourceProvider
	adminID  int64
	log      logger.ILogger

	mu     sync.RWMutex
	states map[int64]FlowState
}

func NewOnboardingService(stg storage.IStorage, oracle MembershipOracle, prv ResourceProvider, adminID int64, log logger.ILogger) OnboardingService {
	return &onboardingService{
		settings: stg.Setting(),
		channels: stg.Channel(),
		users:    stg.User(),
		oracle:   oracle,
		provider: prv,
		adminID:  adminID,
		log:      log,
		states:   make(map[int64]FlowState),
	}
}

func (s *onboardingService) Start(ctx context.Context, teleID int64, username string) (Decision, error) {
	// The enable flag is read fresh on every gate entry, never cached.
	enabled, err := s.settings.Get(ctx, SettingBotEnabled, "1")
	if err != nil {
		return Decision{}, err
	}
	if enabled != "1" && teleID != s.adminID {
		// No ledger touch, no state advance.
		s.setState(teleID, StateGate)
		return Decision{Step: StepDisabled}, nil
	}

	if err := s.users.Upsert(ctx, teleID, nullable(username), nil); err != nil {
		return Decision{}, err
	}

	channels, err := s.channels.List(ctx)
	if err != nil {
		return Decision{}, err
	}
	if len(channels) == 0 {
		s.setState(teleID, StateAwaitingContact)
		return Decision{Step: StepContactPrompt}, nil
	}

	s.setState(teleID, StateAwaitingVerification)
	return Decision{Step: StepJoinPrompt, Channels: channels}, nil
}

func (s *onboardingService) Verify(ctx context.Context, teleID int64) (Decision, error) {
	// Re-fetch the channel set: an admin may have changed it while the join
	// prompt sat on the user's screen.
	channels, err := s.channels.List(ctx)
	if err != nil {
		return Decision{}, err
	}
	if len(channels) == 0 {
		s.setState(teleID, StateAwaitingContact)
		return Decision{Step: StepContactPrompt, Verified: true}, nil
	}

	unmet := s.oracle.CheckAll(ctx, teleID, channels)
	if len(unmet) > 0 {
		s.setState(teleID, StateAwaitingVerification)
		return Decision{Step: StepJoinPrompt, Channels: channels, Unmet: unmet}, nil
	}

	s.setState(teleID, StateAwaitingContact)
	return Decision{Step: StepContactPrompt, Verified: true}, nil
}

func (s *onboardingService) Contact(ctx context.Context, teleID int64, username, phone string) (Decision, error) {
	// The contact lands in the ledger before delivery is attempted, so a
	// failed fetch never loses the captured number.
	if err := s.users.Upsert(ctx, teleID, nullable(username), nullable(phone)); err != nil {
		return Decision{}, err
	}

	servers := s.provider.Fetch(ctx)
	if len(servers) == 0 {
		s.setState(teleID, StateAwaitingContact)
		return Decision{Step: StepUnavailable}, nil
	}

	s.setState(teleID, StateDelivered)
	return Decision{Step: StepDelivered, Servers: s.provider.SampleThree(servers)}, nil
}

func (s *onboardingService) State(teleID int64) FlowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[teleID]; ok {
		return st
	}
	return StateGate
}

func (s *onboardingService) setState(teleID int64, st FlowState) {
	s.mu.Lock()
	s.states[teleID] = st
	s.mu.Unlock()
}
